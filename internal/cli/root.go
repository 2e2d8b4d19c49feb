// Package cli implements the auraxium command line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leonhard-s/auraxium-go/census"
)

// RootOptions holds global settings shared by all commands. Values
// come from flags or AURAXIUM_* environment variables, in that order
// of precedence.
type RootOptions struct {
	Verbose   bool
	ServiceID string
	Namespace string
	Endpoint  string
	Locale    string
}

// NewRootCommand creates the root command for the auraxium CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "auraxium",
		Short: "Query the Daybreak Game Company census API",
		Long: "Build census API queries, inspect the URLs they generate and " +
			"run them against the live API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindConfig(v, cmd); err != nil {
				return err
			}
			opts.ServiceID = v.GetString("service_id")
			opts.Namespace = v.GetString("namespace")
			opts.Endpoint = v.GetString("endpoint")
			opts.Locale = v.GetString("locale")
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"verbose output")
	cmd.PersistentFlags().String("service-id", census.DefaultServiceID,
		"service ID identifying your application")
	cmd.PersistentFlags().String("namespace", census.DefaultNamespace,
		"game namespace to query")
	cmd.PersistentFlags().String("endpoint", "",
		"alternate API endpoint (disables the service ID path segment)")
	cmd.PersistentFlags().String("locale", "",
		"restrict localised strings to this locale")

	cmd.AddCommand(NewURLCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// bindConfig wires flags and AURAXIUM_* environment variables into
// the viper instance backing the root options.
func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("auraxium")
	v.AutomaticEnv()
	bindings := map[string]string{
		"service_id": "service-id",
		"namespace":  "namespace",
		"endpoint":   "endpoint",
		"locale":     "locale",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
