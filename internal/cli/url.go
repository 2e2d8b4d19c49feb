package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leonhard-s/auraxium-go/census"
)

// NewURLCommand creates the "url" command, which prints the wire URL
// a query serialises to without contacting the API.
func NewURLCommand(opts *RootOptions) *cobra.Command {
	flags := &QueryFlags{}
	var count bool

	cmd := &cobra.Command{
		Use:   "url [collection]",
		Short: "Print the URL a query serialises to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.Build(opts, collectionArg(args))
			if err != nil {
				return err
			}
			for _, warning := range census.Validate(q).Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}
			verb := census.VerbGet
			if count {
				verb = census.VerbCount
			}
			wire, err := q.URL(verb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), wire)
			return nil
		},
	}

	flags.Register(cmd)
	cmd.Flags().BoolVar(&count, "count", false, "serialise for the count verb")
	return cmd
}
