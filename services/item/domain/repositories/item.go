package repositories

import (
	"context"

	"github.com/ghuser/shoplist/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// List returns every item ordered by creation time, oldest first.
	List(ctx context.Context) ([]*models.Item, error)

	// Create inserts a new item with completed=false.
	// Returns ErrItemAlreadyExists when another item has the same text case-insensitively.
	Create(ctx context.Context, text models.ItemText) (*models.Item, error)

	// Update applies the patch to the item with the given id and returns the stored result.
	// Returns ErrItemNotFound for an unknown id and ErrItemAlreadyExists when the new
	// text collides with a different item.
	Update(ctx context.Context, id int64, patch models.ItemPatch) (*models.Item, error)

	// Delete removes the item with the given id. Returns ErrItemNotFound if none matched.
	Delete(ctx context.Context, id int64) error
}
