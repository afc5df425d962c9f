// Package quiz is the consumer side of the enrichment pipeline: it loads
// enriched plant records and prepares them for question rendering. It never
// calls the taxonomy or photo services directly.
package quiz

import (
	"math/rand"
	"slices"

	"github.com/tallvaxt/floraquiz/internal/model"
)

// maxSelectedImages is the display selection size per plant.
const maxSelectedImages = 4

// SelectImages picks up to 4 display photos for a plant. Manual photos, when
// present, win outright and the automatic pools are not consulted. Otherwise
// the taxon and observation pools are shuffled independently, up to 2 photos
// are taken from each, the selection is topped up from the leftovers of
// either pool without duplicates, and shuffled once more so the 2+2 origin is
// not positionally visible. The random source is injectable so tests can pin
// outcomes; reruns on the same plant may return a different subset or order.
func SelectImages(rng *rand.Rand, plant *model.EnrichedPlantRecord) []string {
	if len(plant.ManualPhotos) > 0 {
		shuffled := shuffledCopy(rng, plant.ManualPhotos)
		if len(shuffled) > maxSelectedImages {
			shuffled = shuffled[:maxSelectedImages]
		}
		return shuffled
	}

	shuffledTaxon := shuffledCopy(rng, plant.TaxonPhotos)
	shuffledObs := shuffledCopy(rng, plant.ObservationPhotos)

	taxonCount := min(2, len(shuffledTaxon))
	obsCount := min(2, len(shuffledObs))

	selected := make([]string, 0, maxSelectedImages)
	selected = append(selected, shuffledTaxon[:taxonCount]...)
	selected = append(selected, shuffledObs[:obsCount]...)

	if len(selected) < maxSelectedImages {
		fill := make([]string, 0, len(shuffledTaxon)+len(shuffledObs))
		fill = append(fill, shuffledTaxon[taxonCount:]...)
		fill = append(fill, shuffledObs[obsCount:]...)
		for _, photoURL := range fill {
			if len(selected) >= maxSelectedImages {
				break
			}
			if !slices.Contains(selected, photoURL) {
				selected = append(selected, photoURL)
			}
		}
	}

	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return selected
}

// AssignImages computes a display selection for every plant, storing it in
// the Images field. Selections are request-scoped: callers wanting fresh
// randomization simply call again.
func AssignImages(rng *rand.Rand, plants []model.EnrichedPlantRecord) {
	for i := range plants {
		plants[i].Images = SelectImages(rng, &plants[i])
	}
}

func shuffledCopy(rng *rand.Rand, photos []string) []string {
	shuffled := make([]string, len(photos))
	copy(shuffled, photos)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
