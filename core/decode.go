package core

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// document mirrors the FORMAT JSON body. Pointers tell missing keys apart
// from zero values.
type document struct {
	Data                   *[]json.RawMessage `json:"data"`
	Meta                   *[]Column          `json:"meta"`
	Rows                   *uint64            `json:"rows"`
	Statistics             *Statistics        `json:"statistics"`
	RowsBeforeLimitAtLeast *uint64            `json:"rows_before_limit_at_least"`
}

// DecodeResult decodes a FORMAT JSON body into a QueryResult.
//
// Rows are matched onto T by field name, honoring json tags. Extra columns
// are ignored. A field of T that is not present in a row fails the decode,
// unless the field is a pointer, an interface or tagged omitempty. Note that
// the server quotes 64-bit integers by default, so such columns need the
// ",string" tag option.
func DecodeResult[T any](body []byte) (*QueryResult[T], error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &DecodeError{Kind: DecodeMalformed, Row: -1, Err: err}
	}

	switch {
	case doc.Data == nil:
		return nil, malformed("missing %q", "data")
	case doc.Meta == nil:
		return nil, malformed("missing %q", "meta")
	case doc.Rows == nil:
		return nil, malformed("missing %q", "rows")
	case doc.Statistics == nil:
		return nil, malformed("missing %q", "statistics")
	}

	rawRows := *doc.Data
	if *doc.Rows != uint64(len(rawRows)) {
		return nil, malformed("server reported %d rows, got %d", *doc.Rows, len(rawRows))
	}

	required := requiredFields(reflect.TypeOf((*T)(nil)).Elem())

	data := make([]T, len(rawRows))
	for i, raw := range rawRows {
		if err := decodeRow(raw, &data[i], required); err != nil {
			return nil, &DecodeError{Kind: DecodeRowMismatch, Row: i, Err: err}
		}
	}

	return &QueryResult[T]{
		Data:                   data,
		Meta:                   *doc.Meta,
		Rows:                   *doc.Rows,
		Statistics:             *doc.Statistics,
		RowsBeforeLimitAtLeast: doc.RowsBeforeLimitAtLeast,
	}, nil
}

func malformed(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: DecodeMalformed, Row: -1, Err: fmt.Errorf(format, args...)}
}

func decodeRow(raw json.RawMessage, target any, required []string) error {
	if len(required) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("row is not an object: %w", err)
		}

		for _, name := range required {
			if !hasField(fields, name) {
				return fmt.Errorf("missing field %q", name)
			}
		}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return err
	}

	return nil
}

// hasField matches keys the same way the json decoder does: exact match
// first, then case-insensitive.
func hasField(fields map[string]json.RawMessage, name string) bool {
	if _, ok := fields[name]; ok {
		return true
	}
	for key := range fields {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

var requiredCache sync.Map // reflect.Type -> []string

// requiredFields lists json names of fields of typ that every row must carry.
// Non-struct types have none.
func requiredFields(typ reflect.Type) []string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	cached, ok := requiredCache.Load(typ)
	if ok {
		return cached.([]string)
	}

	var names []string
	collectRequired(typ, &names)

	requiredCache.Store(typ, names)
	return names
}

func collectRequired(typ reflect.Type, names *[]string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		// promoted fields of untagged embedded structs
		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				collectRequired(embedded, names)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		if hasOption(opts, "omitempty") || isNullable(field.Type) {
			continue
		}

		*names = append(*names, name)
	}
}

func hasOption(opts, option string) bool {
	for opts != "" {
		var current string
		current, opts, _ = strings.Cut(opts, ",")
		if current == option {
			return true
		}
	}
	return false
}

func isNullable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	default:
		return false
	}
}

