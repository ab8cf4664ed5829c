// Package memory provides an in-process ItemRepository with the same
// ordering and uniqueness rules as the PostgreSQL implementation.
// It backs handler and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	"github.com/ghuser/shoplist/services/item/domain/models"
)

// ItemRepository is a mutex-guarded in-memory repositories.ItemRepository.
type ItemRepository struct {
	mu     sync.Mutex
	items  map[int64]models.Item
	nextID int64
	now    func() time.Time

	// Err, when set, is returned by every operation to simulate a storage failure.
	Err error
}

// NewItemRepository returns an empty repository. now stamps created_at; nil uses time.Now.
func NewItemRepository(now func() time.Time) *ItemRepository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ItemRepository{items: make(map[int64]models.Item), now: now}
}

// List returns copies of all items ordered by created_at, then id.
func (r *ItemRepository) List(_ context.Context) ([]*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*models.Item, 0, len(r.items))
	for _, item := range r.items {
		item := item
		out = append(out, &item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create inserts text unless another item holds it case-insensitively.
func (r *ItemRepository) Create(_ context.Context, text models.ItemText) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if r.duplicateLocked(text, 0) {
		return nil, itemdomain.ErrItemAlreadyExists
	}

	r.nextID++
	item := models.Item{ID: r.nextID, Text: text, CreatedAt: r.now()}
	r.items[item.ID] = item
	return &item, nil
}

// Update applies patch to item id.
func (r *ItemRepository) Update(_ context.Context, id int64, patch models.ItemPatch) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if patch.IsEmpty() {
		return nil, itemdomain.ErrNothingToUpdate
	}

	item, ok := r.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	if patch.Text != nil && r.duplicateLocked(*patch.Text, id) {
		return nil, itemdomain.ErrItemAlreadyExists
	}

	item = patch.Apply(item)
	r.items[id] = item
	return &item, nil
}

// Delete removes item id.
func (r *ItemRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return itemdomain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

// Len reports the number of stored items.
func (r *ItemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *ItemRepository) duplicateLocked(text models.ItemText, excludeID int64) bool {
	key := text.Key()
	for id, item := range r.items {
		if id != excludeID && item.Text.Key() == key {
			return true
		}
	}
	return false
}
