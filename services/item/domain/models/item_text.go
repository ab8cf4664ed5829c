package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ItemText is a value object holding the text of a list entry.
// Surrounding whitespace is trimmed; the result must hold 1..255 characters,
// matching the VARCHAR(255) column.
type ItemText string

const (
	minItemTextLength = 1
	maxItemTextLength = 255
)

// ErrTextRequired is returned when the text is empty after trimming.
var ErrTextRequired = errors.New("item text is required")

// NewItemText trims s and constructs a valid ItemText or returns an error if constraints are violated.
func NewItemText(s string) (ItemText, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < minItemTextLength {
		return "", ErrTextRequired
	}
	if n > maxItemTextLength {
		return "", fmt.Errorf("item text must not exceed %d characters", maxItemTextLength)
	}
	return ItemText(s), nil
}

// String returns the underlying string value.
func (t ItemText) String() string {
	return string(t)
}

// Key returns the case-folded form used for duplicate detection.
// It mirrors LOWER(text) in the unique index on items.
func (t ItemText) Key() string {
	return strings.ToLower(string(t))
}
