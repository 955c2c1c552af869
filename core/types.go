package core

// FormatMarker must be part of every typed query. It asks the server for a
// self-describing JSON document carrying rows, column metadata and
// statistics.
const FormatMarker = "FORMAT JSON"

type (
	// Column describes a single column of the result as declared by the server.
	Column struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	// Statistics is the execution summary reported by the server.
	Statistics struct {
		// BytesRead is the amount of data the engine read.
		BytesRead uint64 `json:"bytes_read"`
		// Elapsed is the wall time in seconds.
		Elapsed float64 `json:"elapsed"`
		// RowsRead counts rows scanned by the engine and may exceed the
		// number of returned rows when the query aggregates.
		RowsRead uint64 `json:"rows_read"`
	}

	// QueryResult is the decoded response of a typed query.
	QueryResult[T any] struct {
		// Data holds one record per row, in server order.
		Data []T
		// Meta describes the columns independently of T.
		Meta []Column
		// Rows is the row count reported by the server.
		Rows       uint64
		Statistics Statistics

		// RowsBeforeLimitAtLeast is reported only for queries with LIMIT.
		RowsBeforeLimitAtLeast *uint64
	}
)

// Header returns the column names in server order.
func (r *QueryResult[T]) Header() []string {
	header := make([]string, 0, len(r.Meta))
	for _, col := range r.Meta {
		header = append(header, col.Name)
	}
	return header
}

// Len is the number of decoded rows.
func (r *QueryResult[T]) Len() int {
	return len(r.Data)
}
