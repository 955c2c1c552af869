package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("server did not answer with Ok")

func NewPingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is alive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			ok, err := opts.client(cmd).Ping(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errUnhealthy
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Ok.")
			return err
		},
	}
}
