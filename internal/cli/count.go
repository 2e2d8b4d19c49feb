package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leonhard-s/auraxium-go/rest"
)

// NewCountCommand creates the "count" command, which prints the
// number of potential matches for a query.
func NewCountCommand(opts *RootOptions) *cobra.Command {
	flags := &QueryFlags{}

	cmd := &cobra.Command{
		Use:   "count [collection]",
		Short: "Print the number of matches for a query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.Build(opts, collectionArg(args))
			if err != nil {
				return err
			}
			client := rest.NewClient(rest.WithLogger(slog.Default()))
			count, err := client.Count(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
