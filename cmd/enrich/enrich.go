// Package enrich implements the batch enrichment subcommand.
package enrich

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallvaxt/floraquiz/internal/conf"
	"github.com/tallvaxt/floraquiz/internal/inaturalist"
	"github.com/tallvaxt/floraquiz/internal/pipeline"
	"github.com/tallvaxt/floraquiz/internal/wfo"
)

// Command creates the enrich command
func Command(settings *conf.Settings) *cobra.Command {
	var skipTaxonomy, skipPhotos bool

	cmd := &cobra.Command{
		Use:   "enrich [input-dir]",
		Short: "Enrich plant record files with taxonomy data and photos",
		Long: `Reads every plant JSON file in the input directory, resolves the Latin
names against World Flora Online, fetches reference photos from iNaturalist
and writes the enriched files to the output directory. The run is idempotent
and can be repeated; reruns overwrite previous output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDir := settings.Pipeline.InputDir
			if len(args) > 0 {
				inputDir = args[0]
			}
			outputDir := settings.Pipeline.OutputDir
			if outputDir == "" {
				outputDir = filepath.Join(inputDir, "preprocessed")
			}

			wfoClient := wfo.NewClient(wfo.Config{
				MatchURL:    settings.WFO.BaseURL,
				GraphQLURL:  settings.WFO.GraphQLURL,
				Timeout:     settings.WFO.Timeout,
				CacheTTL:    settings.WFO.CacheTTL,
				RateLimitMS: settings.WFO.RateLimitMS,
			}, settings.Debug)
			defer wfoClient.Close()

			inatClient := inaturalist.NewClient(inaturalist.Config{
				BaseURL:             settings.INaturalist.BaseURL,
				Timeout:             settings.INaturalist.Timeout,
				CacheTTL:            settings.INaturalist.CacheTTL,
				RateLimitMS:         settings.INaturalist.RateLimitMS,
				TaxonPhotoLimit:     settings.INaturalist.TaxonPhotoLimit,
				ObservationPageSize: settings.INaturalist.ObservationPageSize,
			}, settings.Debug)
			defer inatClient.Close()

			processor := pipeline.New(wfoClient, inatClient,
				time.Duration(settings.Pipeline.CallDelayMS)*time.Millisecond)

			opts := pipeline.Options{
				EnableTaxonomy:            settings.WFO.Enabled && !skipTaxonomy,
				EnablePhotos:              settings.INaturalist.Enabled && !skipPhotos,
				PreferAcceptedForSynonyms: settings.Pipeline.PreferAcceptedForSynonyms,
			}

			return processor.ProcessDirectory(cmd.Context(), inputDir, outputDir,
				settings.Pipeline.FilePattern, opts)
		},
	}

	cmd.Flags().BoolVar(&skipTaxonomy, "skip-taxonomy", false, "Skip the World Flora Online lookups")
	cmd.Flags().BoolVar(&skipPhotos, "skip-photos", false, "Skip the iNaturalist photo fetching")

	return cmd
}
