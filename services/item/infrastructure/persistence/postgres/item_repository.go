package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/shoplist/pkg/database"
	"github.com/ghuser/shoplist/pkg/events"
	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	domainevents "github.com/ghuser/shoplist/services/item/domain/events"
	"github.com/ghuser/shoplist/services/item/domain/models"
)

const uniqueViolation = "23505"

const (
	itemColumns = `id, text, completed, created_at`

	listItemsSQL = `SELECT ` + itemColumns + ` FROM items ORDER BY created_at ASC, id ASC`

	findDuplicateSQL = `SELECT id FROM items WHERE LOWER(text) = LOWER($1) AND id <> $2 LIMIT 1 FOR UPDATE`

	lockItemSQL = `SELECT id FROM items WHERE id = $1 FOR UPDATE`

	insertItemSQL = `INSERT INTO items (text) VALUES ($1) RETURNING ` + itemColumns

	deleteItemSQL = `DELETE FROM items WHERE id = $1 RETURNING id`
)

// TxPublisherFactory hands out watermill publishers bound to a transaction.
// *events.EventBus satisfies it.
type TxPublisherFactory interface {
	NewTxPublisher(tx *sql.Tx) (message.Publisher, error)
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus TxPublisherFactory
}

// NewItemRepository returns an ItemRepository backed by the given connection pool
// and event bus. Every write publishes its domain event inside the same transaction.
// A nil bus disables publishing.
func NewItemRepository(db *database.Database, bus TxPublisherFactory) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// List returns all items, oldest first.
func (r *ItemRepository) List(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.DB().QueryContext(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Create checks for a case-insensitive duplicate and inserts the item in one
// transaction. The unique index on LOWER(text) catches inserts that race past the check.
func (r *ItemRepository) Create(ctx context.Context, text models.ItemText) (*models.Item, error) {
	var item *models.Item
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := checkDuplicate(ctx, tx, text, 0); err != nil {
			return err
		}

		created, err := scanItem(tx.QueryRowContext(ctx, insertItemSQL, text.String()))
		if err != nil {
			if isUniqueViolation(err) {
				return itemdomain.ErrItemAlreadyExists
			}
			return fmt.Errorf("insert item: %w", err)
		}
		item = created

		return r.publish(ctx, tx, domainevents.TopicItemCreated, domainevents.ItemCreatedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     item.ID,
			Text:       item.Text.String(),
			OccurredAt: item.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes only the fields present in patch. The row is locked first so a
// missing id reports ErrItemNotFound before any duplicate check runs.
func (r *ItemRepository) Update(ctx context.Context, id int64, patch models.ItemPatch) (*models.Item, error) {
	query, args := buildUpdate(id, patch)
	if query == "" {
		return nil, itemdomain.ErrNothingToUpdate
	}

	var item *models.Item
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var locked int64
		if err := tx.QueryRowContext(ctx, lockItemSQL, id).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return itemdomain.ErrItemNotFound
			}
			return fmt.Errorf("lock item: %w", err)
		}

		if patch.Text != nil {
			if err := checkDuplicate(ctx, tx, *patch.Text, id); err != nil {
				return err
			}
		}

		updated, err := scanItem(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return itemdomain.ErrItemNotFound
			case isUniqueViolation(err):
				return itemdomain.ErrItemAlreadyExists
			default:
				return fmt.Errorf("update item: %w", err)
			}
		}
		item = updated

		return r.publish(ctx, tx, domainevents.TopicItemUpdated, domainevents.ItemUpdatedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     item.ID,
			Text:       item.Text.String(),
			Completed:  item.Completed,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item permanently.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var deleted int64
		if err := tx.QueryRowContext(ctx, deleteItemSQL, id).Scan(&deleted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return itemdomain.ErrItemNotFound
			}
			return fmt.Errorf("delete item: %w", err)
		}

		return r.publish(ctx, tx, domainevents.TopicItemDeleted, domainevents.ItemDeletedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     deleted,
			OccurredAt: time.Now().UTC(),
		})
	})
}

// checkDuplicate fails with ErrItemAlreadyExists when an item other than
// excludeID already holds text case-insensitively. Ids start at 1, so 0 excludes nothing.
func checkDuplicate(ctx context.Context, tx database.DBTX, text models.ItemText, excludeID int64) error {
	var existing int64
	err := tx.QueryRowContext(ctx, findDuplicateSQL, text.String(), excludeID).Scan(&existing)
	switch {
	case err == nil:
		return itemdomain.ErrItemAlreadyExists
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return fmt.Errorf("check duplicate: %w", err)
	}
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, event any) error {
	if r.bus == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := p.Publish(topic, events.NewMessage(ctx, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item models.Item
		text string
	)
	if err := row.Scan(&item.ID, &text, &item.Completed, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Text = models.ItemText(text)
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
