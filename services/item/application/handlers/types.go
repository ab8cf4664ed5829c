package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	"github.com/ghuser/shoplist/services/item/domain/models"
)

// ItemResponse is the wire shape of a single item.
type ItemResponse struct {
	ID        int64     `json:"id"         example:"7"`
	Text      string    `json:"text"       example:"Milk"`
	Completed bool      `json:"completed"  example:"false"`
	CreatedAt time.Time `json:"created_at" example:"2025-01-15T10:30:00Z"`
} // @name ItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item already exists"`
} // @name ErrorResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Text:      item.Text.String(),
		Completed: item.Completed,
		CreatedAt: item.CreatedAt,
	}
}

// itemIDFromPath parses the {id} URL parameter. Anything other than a positive
// integer is an invalid item reference.
func itemIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, itemdomain.ErrInvalidItem
	}
	return id, nil
}
