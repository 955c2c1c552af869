package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/chhttp/core"
)

const usersBody = `{"data":[{"name":"John","age":42},{"name":"Tommy","age":34}],` +
	`"meta":[{"name":"name","type":"String"},{"name":"age","type":"Int32"}],` +
	`"rows":2,"statistics":{"bytes_read":10,"elapsed":0.01,"rows_read":2}}`

type user struct {
	Name string `json:"name"`
	Age  int32  `json:"age"`
}

func TestDecodeResult(t *testing.T) {
	r := require.New(t)

	result, err := core.DecodeResult[user]([]byte(usersBody))
	r.NoError(err)

	r.Len(result.Data, 2)
	r.Equal(user{Name: "John", Age: 42}, result.Data[0])
	r.Equal(user{Name: "Tommy", Age: 34}, result.Data[1])
	r.Equal(uint64(2), result.Rows)
	r.Equal(uint64(len(result.Data)), result.Rows)
	r.Equal(core.Statistics{BytesRead: 10, Elapsed: 0.01, RowsRead: 2}, result.Statistics)
	r.Equal([]core.Column{{Name: "name", Type: "String"}, {Name: "age", Type: "Int32"}}, result.Meta)
	r.Equal([]string{"name", "age"}, result.Header())
	r.Nil(result.RowsBeforeLimitAtLeast)
}

func TestDecodeResult_MetaIndependentOfTarget(t *testing.T) {
	r := require.New(t)

	type nameOnly struct {
		Name string `json:"name"`
	}

	result, err := core.DecodeResult[nameOnly]([]byte(usersBody))
	r.NoError(err)

	r.Equal([]nameOnly{{"John"}, {"Tommy"}}, result.Data)
	r.Len(result.Meta, 2)
	r.Equal("Int32", result.Meta[1].Type)
}

func TestDecodeResult_Targets(t *testing.T) {
	r := require.New(t)

	// untagged fields match case-insensitively
	type untagged struct {
		Name string
		Age  int
	}
	plain, err := core.DecodeResult[untagged]([]byte(usersBody))
	r.NoError(err)
	r.Equal(untagged{Name: "John", Age: 42}, plain.Data[0])

	// maps take any row
	maps, err := core.DecodeResult[map[string]any]([]byte(usersBody))
	r.NoError(err)
	r.Equal("Tommy", maps.Data[1]["name"])
	r.EqualValues(34, maps.Data[1]["age"])

	// pointers to structs are required the same way as values
	pointers, err := core.DecodeResult[*user]([]byte(usersBody))
	r.NoError(err)
	r.Equal("John", pointers.Data[0].Name)
}

func TestDecodeResult_OptionalFields(t *testing.T) {
	r := require.New(t)

	type withOptional struct {
		Name     string  `json:"name"`
		Email    *string `json:"email"`
		Nickname string  `json:"nickname,omitempty"`
		Ignored  string  `json:"-"`
	}

	result, err := core.DecodeResult[withOptional]([]byte(usersBody))
	r.NoError(err)
	r.Equal("John", result.Data[0].Name)
	r.Nil(result.Data[0].Email)
	r.Empty(result.Data[0].Nickname)
}

func TestDecodeResult_EmbeddedFields(t *testing.T) {
	r := require.New(t)

	type base struct {
		Name string `json:"name"`
	}
	type withEmbedded struct {
		base
		Email string `json:"email"`
	}

	_, err := core.DecodeResult[withEmbedded]([]byte(usersBody))
	r.Error(err)
	r.True(core.IsRowMismatch(err))
}

func TestDecodeResult_RowMismatch(t *testing.T) {
	testCases := []struct {
		name string
		body string
		row  int
	}{
		{
			name: "missing required field",
			body: usersBody,
			row:  0,
		},
		{
			name: "second row lacks field",
			body: `{"data":[{"name":"John","age":42,"email":"j@example.com"},{"name":"Tommy","age":34}],` +
				`"meta":[],"rows":2,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`,
			row: 1,
		},
		{
			name: "wrong value type",
			body: `{"data":[{"name":"John","age":"forty","email":"j@example.com"}],` +
				`"meta":[],"rows":1,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`,
			row: 0,
		},
		{
			name: "row is not an object",
			body: `{"data":[["John",42]],"meta":[],"rows":1,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`,
			row:  0,
		},
	}

	type withEmail struct {
		Name  string `json:"name"`
		Age   int    `json:"age"`
		Email string `json:"email"`
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			result, err := core.DecodeResult[withEmail]([]byte(tc.body))
			r.Nil(result)
			r.Error(err)

			var decErr *core.DecodeError
			r.ErrorAs(err, &decErr)
			r.Equal(core.DecodeRowMismatch, decErr.Kind)
			r.Equal(tc.row, decErr.Row)
			r.False(core.IsMalformed(err))
		})
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"not json", `Code: 62. DB::Exception: Syntax error`},
		{"empty", ``},
		{"missing data", `{"meta":[],"rows":0,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
		{"missing meta", `{"data":[],"rows":0,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
		{"missing rows", `{"data":[],"meta":[],"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
		{"missing statistics", `{"data":[],"meta":[],"rows":0}`},
		{"data not array", `{"data":{},"meta":[],"rows":0,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
		{"row count mismatch", `{"data":[{"name":"a","age":1}],"meta":[],"rows":3,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
		{"negative rows", `{"data":[],"meta":[],"rows":-1,"statistics":{"bytes_read":0,"elapsed":0,"rows_read":0}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			_, err := core.DecodeResult[user]([]byte(tc.body))
			r.Error(err)
			r.True(core.IsMalformed(err), err.Error())
		})
	}
}

func TestDecodeResult_ServerExtras(t *testing.T) {
	r := require.New(t)

	body := `{"meta":[{"name":"name","type":"String"},{"name":"age","type":"Int32"}],` +
		`"data":[{"name":"John","age":42,"city":"Ljubljana"}],` +
		`"rows":1,"rows_before_limit_at_least":2,` +
		`"statistics":{"elapsed":0.000412,"rows_read":2,"bytes_read":38}}`

	result, err := core.DecodeResult[user]([]byte(body))
	r.NoError(err)

	r.Equal(1, result.Len())
	r.NotNil(result.RowsBeforeLimitAtLeast)
	r.Equal(uint64(2), *result.RowsBeforeLimitAtLeast)
	// aggregation style reads can exceed the returned rows
	r.Greater(result.Statistics.RowsRead, result.Rows)
}

func TestDecodeResult_EmptyResult(t *testing.T) {
	r := require.New(t)

	body := `{"meta":[{"name":"name","type":"String"}],"data":[],"rows":0,` +
		`"statistics":{"elapsed":0.0001,"rows_read":0,"bytes_read":0}}`

	result, err := core.DecodeResult[user]([]byte(body))
	r.NoError(err)
	r.Empty(result.Data)
	r.Equal(uint64(0), result.Rows)
}
