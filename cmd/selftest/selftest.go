// Package selftest implements a preview subcommand for the image selection
// policy, useful when reviewing enrichment output.
package selftest

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallvaxt/floraquiz/internal/conf"
	"github.com/tallvaxt/floraquiz/internal/quiz"
)

// Command creates the selftest command
func Command(settings *conf.Settings) *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "selftest <preprocessed-file>",
		Short: "Preview image selections over an enriched plant file",
		Long: `Runs the quiz image selection repeatedly over every plant in an enriched
file and prints how the selections are distributed between the taxon and
observation pools. Selection is randomized; distributions shift between runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plants, err := quiz.LoadPlants(args[0])
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))

			for i := range plants {
				plant := &plants[i]
				fmt.Printf("%s (%s)\n", plant.SwedishName, plant.LatinName)
				fmt.Printf("  pools: %d manual, %d taxon, %d observation\n",
					len(plant.ManualPhotos), len(plant.TaxonPhotos), len(plant.ObservationPhotos))
			}

			for run := 0; run < runs; run++ {
				quiz.AssignImages(rng, plants)
				fmt.Printf("Run %d:\n", run+1)
				for i := range plants {
					plant := &plants[i]
					taxonCount := 0
					for _, photoURL := range plant.Images {
						if slices.Contains(plant.TaxonPhotos, photoURL) {
							taxonCount++
						}
					}
					fmt.Printf("  %s: %d selected (%d taxon, %d other)\n",
						plant.LatinName, len(plant.Images), taxonCount, len(plant.Images)-taxonCount)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 3, "Number of selection runs per plant")

	return cmd
}
