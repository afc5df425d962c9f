// Package names implements an ad hoc name resolution subcommand for
// debugging World Flora Online lookups.
package names

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallvaxt/floraquiz/internal/botanical"
	"github.com/tallvaxt/floraquiz/internal/conf"
	"github.com/tallvaxt/floraquiz/internal/wfo"
)

// Command creates the names command
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "names <latin-name>...",
		Short: "Resolve Latin names against World Flora Online",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := wfo.NewClient(wfo.Config{
				MatchURL:    settings.WFO.BaseURL,
				GraphQLURL:  settings.WFO.GraphQLURL,
				Timeout:     settings.WFO.Timeout,
				CacheTTL:    settings.WFO.CacheTTL,
				RateLimitMS: settings.WFO.RateLimitMS,
			}, settings.Debug)
			defer client.Close()

			for _, name := range args {
				cleaned := botanical.CleanLatinName(name)
				fmt.Printf("Looking up: %q\n", name)
				if cleaned != name {
					fmt.Printf("  Cleaned name:  %s\n", cleaned)
				}

				resolution := client.Resolve(cmd.Context(), cleaned)
				fmt.Printf("  Has match:     %t\n", resolution.HasMatch)
				fmt.Printf("  Is synonym:    %t\n", resolution.IsSynonym)
				fmt.Printf("  Accepted name: %s\n", resolution.AcceptedName)
				if resolution.WFOID != "" {
					fmt.Printf("  WFO ID:        %s\n", resolution.WFOID)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
