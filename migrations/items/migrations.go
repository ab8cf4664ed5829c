// Package items embeds the goose migrations for the items table.
package items

import "embed"

//go:embed *.sql
var FS embed.FS
