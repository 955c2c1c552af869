package format

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/kndndrj/chhttp/core"
)

var _ Formatter = (*JSON)(nil)

type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (jf *JSON) Name() string {
	return "json"
}

// Format writes an indented array of objects. Keys that are not described
// by meta are dropped.
func (jf *JSON) Format(meta []core.Column, rows []map[string]any, writer io.Writer) error {
	data := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(meta))
		for _, col := range meta {
			record[col.Name] = row[col.Name]
		}
		data = append(data, record)
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("enc.Encode: %w", err)
	}

	return nil
}
