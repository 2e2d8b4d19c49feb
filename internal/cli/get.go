package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leonhard-s/auraxium-go/rest"
)

// NewGetCommand creates the "get" command, which runs a query against
// the live API and prints the matching records as JSON.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	flags := &QueryFlags{}

	cmd := &cobra.Command{
		Use:   "get [collection]",
		Short: "Run a query and print the matching records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.Build(opts, collectionArg(args))
			if err != nil {
				return err
			}
			client := rest.NewClient(rest.WithLogger(slog.Default()))
			records, err := client.Get(cmd.Context(), q)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
