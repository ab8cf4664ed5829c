package handlers

import (
	"net/http"

	"github.com/ghuser/shoplist/pkg/errhttp"
	"github.com/ghuser/shoplist/pkg/httpx"
	"github.com/ghuser/shoplist/pkg/logger"
	pkgvalidator "github.com/ghuser/shoplist/pkg/validator"
	appsvcs "github.com/ghuser/shoplist/services/item/application/services"
)

// UpdateItemRequest is the request body for PUT /items/{id}. Omitted fields
// are left unchanged; at least one must be present.
type UpdateItemRequest struct {
	Text      *string `json:"text,omitempty" example:"Oat milk"`
	Completed *bool   `json:"completed,omitempty" example:"true"`
} // @name UpdateItemRequest

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services, log logger.Logger) *PutItemHandler {
	return &PutItemHandler{svc: svc, log: log}
}

// Execute partially updates an item.
//
//	@Summary		Update item
//	@Description	Changes the text, the completed flag, or both. Fields left out of the body keep their value.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Item ID"
//	@Param			request	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemIDFromPath(r)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Update(r.Context(), id, req.Text, req.Completed)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
