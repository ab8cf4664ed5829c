package errhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/shoplist/pkg/config"
	"github.com/ghuser/shoplist/pkg/logger"
	itemdomain "github.com/ghuser/shoplist/services/item/domain"
)

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody)
}

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrItemNotFound", itemdomain.ErrItemNotFound, http.StatusNotFound},
		{"ErrItemAlreadyExists", itemdomain.ErrItemAlreadyExists, http.StatusConflict},
		{"ErrInvalidItem", itemdomain.ErrInvalidItem, http.StatusBadRequest},
		{"ErrNothingToUpdate", itemdomain.ErrNothingToUpdate, http.StatusBadRequest},
		{"wrapped ErrItemNotFound", fmt.Errorf("update item 4: %w", itemdomain.ErrItemNotFound), http.StatusNotFound},
		{"wrapped ErrInvalidItem", fmt.Errorf("%w: too long", itemdomain.ErrInvalidItem), http.StatusBadRequest},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("list items: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, newRequest(), logger.New(&config.Config{LogLevel: "error"}), tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, newRequest(), logger.New(&config.Config{LogLevel: "error"}), itemdomain.ErrItemNotFound)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != "item not found" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestWriteError_WrappedConflictUsesSentinelText(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, newRequest(), logger.New(&config.Config{LogLevel: "error"}),
		fmt.Errorf("update item 3: %w", itemdomain.ErrItemAlreadyExists))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != "item already exists" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestWriteError_ValidationKeepsDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, newRequest(), logger.New(&config.Config{LogLevel: "error"}),
		fmt.Errorf("%w: item text is required", itemdomain.ErrInvalidItem))

	if !strings.Contains(w.Body.String(), "item text is required") {
		t.Fatalf("expected validation detail in body, got %s", w.Body.String())
	}
}

func TestWriteError_StorageErrorIsGenericAndLogged(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info"}, &logs)

	w := httptest.NewRecorder()
	WriteError(w, newRequest(), log, errors.New(`pq: password authentication failed for user "app"`))

	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("storage details leaked to client: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), http.StatusText(http.StatusInternalServerError)) {
		t.Fatalf("expected generic message, got %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "password authentication failed") {
		t.Fatalf("expected the full error in server logs, got %s", logs.String())
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, newRequest(), logger.New(&config.Config{LogLevel: "error"}), itemdomain.ErrItemNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
