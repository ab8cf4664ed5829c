package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shoplist/pkg/app"
	"github.com/ghuser/shoplist/pkg/logger"
	"github.com/ghuser/shoplist/services/item/application/handlers"
	appsvcs "github.com/ghuser/shoplist/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a.Logger)
}

// Mount registers the item endpoints against an already wired service container.
func Mount(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", handlers.NewListItemsHandler(svcs, log).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs, log).Execute)
		r.Put("/{id}", handlers.NewPutItemHandler(svcs, log).Execute)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, log).Execute)
	})
}
