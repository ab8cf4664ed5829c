package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgcache "github.com/ghuser/shoplist/pkg/cache"
	"github.com/ghuser/shoplist/pkg/config"
	"github.com/ghuser/shoplist/pkg/logger"
	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	"github.com/ghuser/shoplist/services/item/domain/models"
	"github.com/ghuser/shoplist/services/item/infrastructure/persistence/memory"
)

type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	items       []pkgcache.CachedItem
	has         bool
	getErr      error
	sets        int
	invalidates int
}

func (c *fakeCache) Get(_ context.Context) ([]pkgcache.CachedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if !c.has {
		return nil, pkgcache.ErrCacheMiss
	}
	return c.items, nil
}

func (c *fakeCache) Generation(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeCache) Set(_ context.Context, gen int64, items []pkgcache.CachedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return pkgcache.ErrStaleGeneration
	}
	c.items, c.has = items, true
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.items, c.has = nil, false
	c.invalidates++
	return nil
}

// pausingRepo holds List after the store read until release is closed.
type pausingRepo struct {
	*memory.ItemRepository
	listed  chan struct{}
	release chan struct{}
}

func (r *pausingRepo) List(ctx context.Context) ([]*models.Item, error) {
	items, err := r.ItemRepository.List(ctx)
	close(r.listed)
	<-r.release
	return items, err
}

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func stepClock() func() time.Time {
	t := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestService(cache ListCache) (*ItemService, *memory.ItemRepository) {
	repo := memory.NewItemRepository(stepClock())
	return NewItemService(repo, cache, testLogger()), repo
}

func ptr[T any](v T) *T { return &v }

func TestCreate_DuplicateDifferentCase(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Create(ctx, "milk")
	if !errors.Is(err, itemdomain.ErrItemAlreadyExists) {
		t.Fatalf("expected ErrItemAlreadyExists, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected exactly one persisted row, got %d", repo.Len())
	}
}

func TestCreate_InvalidText(t *testing.T) {
	svc, repo := newTestService(nil)

	for _, text := range []string{"", "   ", "Milk\x00"} {
		_, err := svc.Create(context.Background(), text)
		if !errors.Is(err, itemdomain.ErrInvalidItem) {
			t.Fatalf("Create(%q): expected ErrInvalidItem, got %v", text, err)
		}
	}
	if repo.Len() != 0 {
		t.Fatalf("expected no rows, got %d", repo.Len())
	}
}

func TestCreate_StartsIncomplete(t *testing.T) {
	svc, _ := newTestService(nil)
	item, err := svc.Create(context.Background(), "  Eggs ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Completed {
		t.Fatal("new items must start with completed=false")
	}
	if item.Text != "Eggs" {
		t.Fatalf("expected trimmed text, got %q", item.Text)
	}
}

func TestList_OrderedAndRoundTrips(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	var createdIDs []int64
	for _, text := range []string{"Milk", "Bread", "Apples"} {
		item, err := svc.Create(ctx, text)
		if err != nil {
			t.Fatalf("create %q: %v", text, err)
		}
		createdIDs = append(createdIDs, item.ID)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.Before(items[i-1].CreatedAt) {
			t.Fatalf("items out of creation order at %d", i)
		}
	}
	for i, item := range items {
		if item.ID != createdIDs[i] || item.Completed {
			t.Fatalf("item %d does not match creation response: %+v", i, item)
		}
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	item, _ := svc.Create(ctx, "Milk")

	got, err := svc.Update(ctx, item.ID, nil, ptr(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Milk" || !got.Completed {
		t.Fatalf("completed-only update changed text: %+v", got)
	}

	got, err = svc.Update(ctx, item.ID, ptr("Oat milk"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Oat milk" || !got.Completed {
		t.Fatalf("text-only update changed completed: %+v", got)
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	milk, _ := svc.Create(ctx, "Milk")
	bread, _ := svc.Create(ctx, "Bread")

	tests := []struct {
		name      string
		id        int64
		text      *string
		completed *bool
		want      error
	}{
		{"no fields", milk.ID, nil, nil, itemdomain.ErrNothingToUpdate},
		{"empty text", milk.ID, ptr(""), nil, itemdomain.ErrInvalidItem},
		{"unknown id", 999, nil, ptr(true), itemdomain.ErrItemNotFound},
		{"duplicate text", bread.ID, ptr("MILK"), nil, itemdomain.ErrItemAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.id, tt.text, tt.completed)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	items, _ := svc.List(ctx)
	if items[0].Text != "Milk" || items[1].Text != "Bread" || items[0].Completed || items[1].Completed {
		t.Fatalf("failed updates must not mutate state: %+v %+v", items[0], items[1])
	}
}

func TestDelete_ThenDeleteAgain(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()
	item, _ := svc.Create(ctx, "Milk")
	_, _ = svc.Create(ctx, "Bread")

	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected exactly one row removed, %d remain", repo.Len())
	}
	if err := svc.Delete(ctx, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on second delete, got %v", err)
	}
}

func TestList_ReadThroughCache(t *testing.T) {
	cache := &fakeCache{}
	svc, repo := newTestService(cache)
	ctx := context.Background()
	_, _ = svc.Create(ctx, "Milk")

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache refill on miss, got %d sets", cache.sets)
	}

	repo.Err = errors.New("postgres down")
	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("expected cache hit to bypass postgres, got %v", err)
	}
	if len(items) != 1 || items[0].Text != "Milk" {
		t.Fatalf("unexpected cached items: %+v", items)
	}
}

func TestWrites_InvalidateCache(t *testing.T) {
	cache := &fakeCache{}
	svc, _ := newTestService(cache)
	ctx := context.Background()

	item, _ := svc.Create(ctx, "Milk")
	_, _ = svc.Update(ctx, item.ID, nil, ptr(true))
	_ = svc.Delete(ctx, item.ID)
	if cache.invalidates != 3 {
		t.Fatalf("expected 3 invalidations, got %d", cache.invalidates)
	}

	_, _ = svc.Create(ctx, "milk")
	_, _ = svc.Create(ctx, "MILK")
	if cache.invalidates != 4 {
		t.Fatalf("rejected writes must not invalidate, got %d", cache.invalidates)
	}
}

func TestList_CacheErrorFallsBackToStore(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis timeout")}
	svc, _ := newTestService(cache)
	ctx := context.Background()
	_, _ = svc.Create(ctx, "Milk")

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from store, got %d", len(items))
	}
}

func TestList_StorageError(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.Err = errors.New("connection refused")

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestList_WriteDuringRefillIsNotHidden(t *testing.T) {
	cache := &fakeCache{}
	repo := &pausingRepo{
		ItemRepository: memory.NewItemRepository(stepClock()),
		listed:         make(chan struct{}),
		release:        make(chan struct{}),
	}
	ctx := context.Background()
	reader := NewItemService(repo, cache, testLogger())
	writer := NewItemService(repo.ItemRepository, cache, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := reader.List(ctx)
		done <- err
	}()

	<-repo.listed
	if _, err := writer.Create(ctx, "Milk"); err != nil {
		t.Fatalf("create: %v", err)
	}
	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("concurrent list: %v", err)
	}

	items, err := writer.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Text != "Milk" {
		t.Fatalf("expected the committed item after the concurrent refill, got %+v", items)
	}
}
