package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kndndrj/chhttp/core"
	"github.com/kndndrj/chhttp/core/format"
)

func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Run a query and print the result",
		Long: "Run a query and print the result. " + core.FormatMarker +
			" is appended when the statement does not request it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := format.New(output)
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			statement := withFormat(strings.Join(args, " "))

			result, err := core.Query[map[string]any](ctx, opts.client(cmd), statement)
			if err != nil {
				return err
			}

			if err := formatter.Format(result.Meta, result.Data, cmd.OutOrStdout()); err != nil {
				return err
			}

			if opts.Verbose {
				s := result.Statistics
				fmt.Fprintf(cmd.ErrOrStderr(), "%d rows in set. Elapsed: %.3f sec. Processed %d rows, %d bytes.\n",
					result.Rows, s.Elapsed, s.RowsRead, s.BytesRead)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table",
		fmt.Sprintf("output format (%s)", strings.Join(format.Names(), "|")))

	return cmd
}

// withFormat appends the format marker unless the statement carries it.
func withFormat(statement string) string {
	if strings.Contains(statement, core.FormatMarker) {
		return statement
	}
	statement = strings.TrimRight(strings.TrimSpace(statement), ";")
	return statement + " " + core.FormatMarker
}
