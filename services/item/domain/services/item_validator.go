// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"unicode"

	itemdomain "github.com/ghuser/shoplist/services/item/domain"
	"github.com/ghuser/shoplist/services/item/domain/models"
)

// ValidateText enforces business rules for ItemText beyond the structural
// constraints enforced by the ItemText constructor (trimmed, 1–255 characters).
//
// Business rules:
//   - No control characters (Unicode category Cc), including tabs and newlines
func ValidateText(text models.ItemText) error {
	if text.String() == "" {
		return models.ErrTextRequired
	}
	for _, r := range text.String() {
		if unicode.IsControl(r) {
			return fmt.Errorf("item text must not contain control characters")
		}
	}
	return nil
}

// ValidatePatch checks an update before it reaches the repository: at least
// one field must be present, and a present text must satisfy ValidateText.
func ValidatePatch(patch models.ItemPatch) error {
	if patch.IsEmpty() {
		return itemdomain.ErrNothingToUpdate
	}
	if patch.Text != nil {
		if err := ValidateText(*patch.Text); err != nil {
			return fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
		}
	}
	return nil
}
