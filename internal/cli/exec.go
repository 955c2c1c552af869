package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewExecCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <statement>",
		Short: "Run a statement and discard its output",
		Example: `  chq exec "CREATE TABLE test(name String, age Int32) ENGINE = MergeTree ORDER BY name"
  chq exec "INSERT INTO test VALUES ('John', 42)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			return opts.client(cmd).Execute(ctx, strings.Join(args, " "))
		},
	}
}
