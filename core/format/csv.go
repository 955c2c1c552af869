package format

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kndndrj/chhttp/core"
)

var _ Formatter = (*CSV)(nil)

type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (cf *CSV) Name() string {
	return "csv"
}

func (cf *CSV) Format(meta []core.Column, rows []map[string]any, writer io.Writer) error {
	header := make([]string, 0, len(meta))
	for _, col := range meta {
		header = append(header, col.Name)
	}
	data := [][]string{header}

	for _, row := range rows {
		var csvRow []string
		for _, val := range ordered(meta, row) {
			if val == nil {
				csvRow = append(csvRow, "")
				continue
			}
			csvRow = append(csvRow, fmt.Sprint(val))
		}
		data = append(data, csvRow)
	}

	w := csv.NewWriter(writer)
	if err := w.WriteAll(data); err != nil {
		return fmt.Errorf("w.WriteAll: %w", err)
	}

	return nil
}
