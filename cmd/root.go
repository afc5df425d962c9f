// Package cmd wires the floraquiz CLI together.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallvaxt/floraquiz/cmd/enrich"
	"github.com/tallvaxt/floraquiz/cmd/names"
	"github.com/tallvaxt/floraquiz/cmd/selftest"
	"github.com/tallvaxt/floraquiz/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "floraquiz",
		Short: "Plant quiz data enrichment CLI",
		Long: `floraquiz enriches plant taxonomy records with canonical names from
World Flora Online and reference photos from iNaturalist, producing the
preprocessed artifacts the quiz consumes.`,
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		enrich.Command(settings),
		names.Command(settings),
		selftest.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags configures the global flags for the root command
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		cobra.CheckErr(err)
	}
}
