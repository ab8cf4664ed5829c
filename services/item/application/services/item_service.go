package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	pkgcache "github.com/ghuser/shoplist/pkg/cache"
	"github.com/ghuser/shoplist/pkg/logger"
	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	"github.com/ghuser/shoplist/services/item/domain/models"
	"github.com/ghuser/shoplist/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/shoplist/services/item/domain/services"
)

// ListCache is the read-model cache for the item list. *pkgcache.ItemListCache satisfies it.
type ListCache interface {
	Get(ctx context.Context) ([]pkgcache.CachedItem, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, gen int64, items []pkgcache.CachedItem) error
	Invalidate(ctx context.Context) error
}

// ItemService orchestrates the shopping list use cases.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads are served from the Redis list cache when one is configured.
type ItemService struct {
	repo  repositories.ItemRepository
	cache ListCache
	log   logger.Logger

	writes metric.Int64Counter
}

// NewItemService returns an ItemService wired with the given repository and cache.
// cache may be nil.
func NewItemService(repo repositories.ItemRepository, cache ListCache, log logger.Logger) *ItemService {
	writes, _ := otel.Meter("shoplist/item").Int64Counter("item.writes",
		metric.WithDescription("Item write attempts by operation and outcome"))
	return &ItemService{repo: repo, cache: cache, log: log, writes: writes}
}

// List returns every item, oldest first, using a read-through cache:
//  1. Serve the Redis snapshot when present.
//  2. On a miss or cache error, query Postgres.
//  3. Refill the snapshot, unless a write invalidated the cache after the
//     generation was read.
func (s *ItemService) List(ctx context.Context) ([]*models.Item, error) {
	refill := false
	var gen int64
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "list cache read failed, falling back to postgres", "error", err)
		}
		if gen, err = s.cache.Generation(ctx); err == nil {
			refill = true
		} else {
			s.log.WarnContext(ctx, "list cache generation read failed", "error", err)
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if refill {
		err := s.cache.Set(ctx, gen, toCache(items))
		switch {
		case err == nil:
		case errors.Is(err, pkgcache.ErrStaleGeneration):
			s.log.DebugContext(ctx, "list cache refill skipped, invalidated during read")
		default:
			s.log.WarnContext(ctx, "list cache refill failed", "error", err)
		}
	}
	return items, nil
}

// Create validates text and persists a new item. A case-insensitive duplicate
// yields ErrItemAlreadyExists; invalid text yields ErrInvalidItem.
func (s *ItemService) Create(ctx context.Context, text string) (*models.Item, error) {
	itemText, err := models.NewItemText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
	}
	if err := domainsvcs.ValidateText(itemText); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
	}

	item, err := s.repo.Create(ctx, itemText)
	s.record(ctx, "create", err)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.invalidate(ctx)
	return item, nil
}

// Update changes only the supplied fields of item id. At least one of text and
// completed must be non-nil.
func (s *ItemService) Update(ctx context.Context, id int64, text *string, completed *bool) (*models.Item, error) {
	patch := models.ItemPatch{Completed: completed}
	if text != nil {
		itemText, err := models.NewItemText(*text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
		}
		patch.Text = &itemText
	}
	if err := domainsvcs.ValidatePatch(patch); err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, patch)
	s.record(ctx, "update", err)
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}

	s.invalidate(ctx)
	return item, nil
}

// Delete removes item id. Returns ErrItemNotFound if no matching item exists.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	s.record(ctx, "delete", err)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}

	s.invalidate(ctx)
	return nil
}

// invalidate drops the list snapshot after a committed write. Failures are
// logged only; the worker invalidates again when it consumes the event.
func (s *ItemService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "list cache invalidation failed", "error", err)
	}
}

func (s *ItemService) record(ctx context.Context, op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, itemdomain.ErrItemAlreadyExists):
		outcome = "conflict"
	case errors.Is(err, itemdomain.ErrItemNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func toCache(items []*models.Item) []pkgcache.CachedItem {
	out := make([]pkgcache.CachedItem, len(items))
	for i, item := range items {
		out[i] = pkgcache.CachedItem{
			ID:        item.ID,
			Text:      item.Text.String(),
			Completed: item.Completed,
			CreatedAt: item.CreatedAt,
		}
	}
	return out
}

func fromCache(cached []pkgcache.CachedItem) []*models.Item {
	out := make([]*models.Item, len(cached))
	for i, c := range cached {
		out[i] = &models.Item{
			ID:        c.ID,
			Text:      models.ItemText(c.Text),
			Completed: c.Completed,
			CreatedAt: c.CreatedAt,
		}
	}
	return out
}
