// Package format renders untyped query results for humans and scripts.
package format

import (
	"fmt"
	"io"

	"github.com/kndndrj/chhttp/core"
)

// Formatter writes rows in the column order given by meta.
type Formatter interface {
	Name() string
	Format(meta []core.Column, rows []map[string]any, w io.Writer) error
}

// New returns the formatter registered under name.
func New(name string) (Formatter, error) {
	switch name {
	case "table":
		return NewTable(), nil
	case "json":
		return NewJSON(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", name)
	}
}

// Names lists every known formatter.
func Names() []string {
	return []string{"table", "json", "csv"}
}

// ordered returns row values in column order. Values of columns missing from
// the row are nil.
func ordered(meta []core.Column, row map[string]any) []any {
	values := make([]any, len(meta))
	for i, col := range meta {
		values[i] = row[col.Name]
	}
	return values
}
