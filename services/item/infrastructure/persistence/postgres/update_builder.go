package postgres

import (
	"fmt"
	"strings"

	"github.com/ghuser/shoplist/services/item/domain/models"
)

// column is one "name = $n" assignment of an UPDATE statement.
// name is always a fixed identifier from this file, never caller input.
type column struct {
	name  string
	value any
}

// patchColumns lists the assignments for the fields present in patch, in a
// stable order: text, then completed.
func patchColumns(patch models.ItemPatch) []column {
	cols := make([]column, 0, 2)
	if patch.Text != nil {
		cols = append(cols, column{name: "text", value: patch.Text.String()})
	}
	if patch.Completed != nil {
		cols = append(cols, column{name: "completed", value: *patch.Completed})
	}
	return cols
}

// buildUpdate renders a parameterised UPDATE for the supplied fields only.
// Values travel as bind arguments; the id is always the last placeholder.
// Returns an empty query when the patch has no fields.
func buildUpdate(id int64, patch models.ItemPatch) (string, []any) {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return "", nil
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c.name, i+1)
		args = append(args, c.value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), itemColumns)
	return query, args
}
