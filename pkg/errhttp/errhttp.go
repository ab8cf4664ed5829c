// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/ghuser/shoplist/pkg/httpx"
	"github.com/ghuser/shoplist/pkg/logger"
	itemdomain "github.com/ghuser/shoplist/services/item/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500: they are logged, reported to Sentry when a hub
// is attached to the request, and the client only sees the generic status text.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	}
	httpx.JSONError(w, status, message)
}

// mapError returns the status and client-facing message for err. Not found and
// conflict answer with the bare sentinel text; validation errors keep their
// detail since it only describes the client's own input.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound, itemdomain.ErrItemNotFound.Error() // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists):
		return http.StatusConflict, itemdomain.ErrItemAlreadyExists.Error() // 409
	case errors.Is(err, itemdomain.ErrInvalidItem),
		errors.Is(err, itemdomain.ErrNothingToUpdate):
		return http.StatusBadRequest, err.Error() // 400
	default:
		status := http.StatusInternalServerError // 500
		return status, httpx.SafeError(err, status, true)
	}
}
