package models

import "time"

// Item is the single aggregate of the shopping list.
// ID and CreatedAt are assigned by the store.
type Item struct {
	ID        int64
	Text      ItemText
	Completed bool
	CreatedAt time.Time
}

// ItemPatch carries the optional fields of an update. A nil field is left untouched.
type ItemPatch struct {
	Text      *ItemText
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply returns a copy of item with the patch fields applied.
func (p ItemPatch) Apply(item Item) Item {
	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	return item
}
