package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/shoplist/pkg/errhttp"
	"github.com/ghuser/shoplist/pkg/httpx"
	"github.com/ghuser/shoplist/pkg/logger"
	appsvcs "github.com/ghuser/shoplist/services/item/application/services"
)

// DeleteItemResponse confirms a deletion.
type DeleteItemResponse struct {
	Message string `json:"message" example:"item 7 deleted"`
	ID      int64  `json:"id"      example:"7"`
} // @name DeleteItemResponse

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, log: log}
}

// Execute permanently removes an item.
//
//	@Summary		Delete item
//	@Tags			items
//	@Produce		json
//	@Param			id	path		int	true	"Item ID"
//	@Success		200	{object}	DeleteItemResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromPath(r)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, DeleteItemResponse{
		Message: fmt.Sprintf("item %d deleted", id),
		ID:      id,
	})
}
