package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/shoplist/pkg/config"
	"github.com/ghuser/shoplist/pkg/logger"
	"github.com/ghuser/shoplist/services/item/application/api"
	"github.com/ghuser/shoplist/services/item/application/handlers"
	appsvcs "github.com/ghuser/shoplist/services/item/application/services"
	"github.com/ghuser/shoplist/services/item/infrastructure/persistence/memory"
)

type testServer struct {
	router http.Handler
	repo   *memory.ItemRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	repo := memory.NewItemRepository(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{Item: appsvcs.NewItemService(repo, nil, log)}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		api.Mount(r, svcs, log)
	})
	return &testServer{router: r, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestListItems_EmptyArray(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestCreateItem(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/items", `{"text":"  Milk  "}`)

	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[handlers.ItemResponse](t, w)
	assert.Positive(t, item.ID)
	assert.Equal(t, "Milk", item.Text)
	assert.False(t, item.Completed)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestCreateItem_DuplicateIgnoresCase(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", `{"text":"Milk"}`).Code)

	w := s.do(t, http.MethodPost, "/api/items", `{"text":"mILK"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "item already exists", decode[handlers.ErrorResponse](t, w).Error)
	assert.Equal(t, 1, s.repo.Len())
}

func TestCreateItem_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{}`},
		{"empty text", `{"text":""}`},
		{"whitespace only", `{"text":"   "}`},
		{"text too long", `{"text":"` + strings.Repeat("x", 256) + `"}`},
		{"wrong type", `{"text":42}`},
		{"malformed json", `{"text":`},
		{"no body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/api/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, 0, s.repo.Len())
		})
	}
}

func TestCreateAndUpdate_LengthCheckedAfterTrim(t *testing.T) {
	s := newTestServer(t)
	full := strings.Repeat("x", 255)

	w := s.do(t, http.MethodPost, "/api/items", `{"text":"  `+full+` "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[handlers.ItemResponse](t, w)
	assert.Equal(t, full, item.Text)

	w = s.do(t, http.MethodPut, "/api/items/"+itoa(item.ID), `{"text":" `+strings.Repeat("y", 255)+`  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, strings.Repeat("y", 255), decode[handlers.ItemResponse](t, w).Text)
}

func TestListItems_CreationOrder(t *testing.T) {
	s := newTestServer(t)
	var created []handlers.ItemResponse
	for _, text := range []string{"Milk", "Bread", "Apples"} {
		w := s.do(t, http.MethodPost, "/api/items", `{"text":"`+text+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		created = append(created, decode[handlers.ItemResponse](t, w))
	}

	items := decode[[]handlers.ItemResponse](t, s.do(t, http.MethodGet, "/api/items", ""))

	require.Len(t, items, 3)
	for i := range created {
		assert.Equal(t, created[i].ID, items[i].ID)
		assert.Equal(t, created[i].Text, items[i].Text)
		assert.True(t, created[i].CreatedAt.Equal(items[i].CreatedAt))
	}
}

func TestUpdateItem_PartialFields(t *testing.T) {
	s := newTestServer(t)
	item := decode[handlers.ItemResponse](t, s.do(t, http.MethodPost, "/api/items", `{"text":"Milk"}`))
	path := "/api/items/" + itoa(item.ID)

	w := s.do(t, http.MethodPut, path, `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[handlers.ItemResponse](t, w)
	assert.Equal(t, "Milk", got.Text)
	assert.True(t, got.Completed)

	w = s.do(t, http.MethodPut, path, `{"text":"Oat milk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[handlers.ItemResponse](t, w)
	assert.Equal(t, "Oat milk", got.Text)
	assert.True(t, got.Completed, "a text-only update must keep completed")
	assert.True(t, item.CreatedAt.Equal(got.CreatedAt))

	w = s.do(t, http.MethodPut, path, `{"text":"Milk","completed":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[handlers.ItemResponse](t, w)
	assert.Equal(t, "Milk", got.Text)
	assert.False(t, got.Completed)
}

func TestUpdateItem_Errors(t *testing.T) {
	s := newTestServer(t)
	milk := decode[handlers.ItemResponse](t, s.do(t, http.MethodPost, "/api/items", `{"text":"Milk"}`))
	bread := decode[handlers.ItemResponse](t, s.do(t, http.MethodPost, "/api/items", `{"text":"Bread"}`))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"unknown id", "/api/items/999", `{"completed":true}`, http.StatusNotFound},
		{"non-numeric id", "/api/items/abc", `{"completed":true}`, http.StatusBadRequest},
		{"zero id", "/api/items/0", `{"completed":true}`, http.StatusBadRequest},
		{"empty body object", "/api/items/" + itoa(milk.ID), `{}`, http.StatusBadRequest},
		{"empty text", "/api/items/" + itoa(milk.ID), `{"text":""}`, http.StatusBadRequest},
		{"text too long", "/api/items/" + itoa(milk.ID), `{"text":"` + strings.Repeat("x", 256) + `"}`, http.StatusBadRequest},
		{"duplicate text", "/api/items/" + itoa(bread.ID), `{"text":"MILK"}`, http.StatusConflict},
		{"completed not a bool", "/api/items/" + itoa(milk.ID), `{"completed":"yes"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	items := decode[[]handlers.ItemResponse](t, s.do(t, http.MethodGet, "/api/items", ""))
	require.Len(t, items, 2)
	assert.Equal(t, "Milk", items[0].Text)
	assert.Equal(t, "Bread", items[1].Text)
}

func TestUpdateItem_SameTextDifferentCaseOnItself(t *testing.T) {
	s := newTestServer(t)
	item := decode[handlers.ItemResponse](t, s.do(t, http.MethodPost, "/api/items", `{"text":"milk"}`))

	w := s.do(t, http.MethodPut, "/api/items/"+itoa(item.ID), `{"text":"Milk"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Milk", decode[handlers.ItemResponse](t, w).Text)
}

func TestDeleteItem(t *testing.T) {
	s := newTestServer(t)
	item := decode[handlers.ItemResponse](t, s.do(t, http.MethodPost, "/api/items", `{"text":"Milk"}`))
	_ = s.do(t, http.MethodPost, "/api/items", `{"text":"Bread"}`)
	path := "/api/items/" + itoa(item.ID)

	w := s.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.DeleteItemResponse](t, w)
	assert.Equal(t, item.ID, resp.ID)
	assert.Equal(t, "item "+itoa(item.ID)+" deleted", resp.Message)
	assert.Equal(t, 1, s.repo.Len())

	w = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/items/-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageFailure_GenericError(t *testing.T) {
	s := newTestServer(t)
	s.repo.Err = errors.New(`dial tcp 10.0.0.5:5432: connect: connection refused`)

	w := s.do(t, http.MethodGet, "/api/items", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decode[handlers.ErrorResponse](t, w).Error)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPatch, "/api/items/1", `{"completed":true}`)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
