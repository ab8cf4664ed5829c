package services

import (
	"github.com/ghuser/shoplist/pkg/app"
	"github.com/ghuser/shoplist/pkg/cache"
	"github.com/ghuser/shoplist/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	var bus postgres.TxPublisherFactory
	if a.EventBus != nil {
		bus = a.EventBus
	}
	repo := postgres.NewItemRepository(a.Db, bus)

	var listCache ListCache
	if a.Redis != nil {
		listCache = cache.NewItemListCache(a.Redis, a.ListCacheTTL)
	}
	return &Services{
		Item: NewItemService(repo, listCache, a.Logger),
	}
}
