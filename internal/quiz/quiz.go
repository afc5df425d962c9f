package quiz

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/tallvaxt/floraquiz/internal/errors"
	"github.com/tallvaxt/floraquiz/internal/model"
)

// Plant is the record shape the quiz consumes. The enrichment output artifact
// is the sole hand-off point between the pipeline and the quiz.
type Plant = model.EnrichedPlantRecord

// GameMode describes one way of quizzing over the plant list. Implementations
// live with the presentation layer; the pipeline only guarantees the record
// shape they receive.
type GameMode interface {
	ID() string
	Label() string
	// Answer returns the expected answer for a plant in this mode.
	Answer(plant *Plant) string
}

// LoadPlants reads an enrichment artifact.
func LoadPlants(path string) ([]Plant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf("failed to read plant data: %w", err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Component("quiz").
			Build()
	}

	var plants []Plant
	if err := json.Unmarshal(data, &plants); err != nil {
		return nil, errors.Newf("failed to parse plant data: %w", err).
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Component("quiz").
			Build()
	}
	return plants, nil
}

// LoadPlantsWithFallback prefers the preprocessed artifact but falls back to
// the raw input artifact when no preprocessed file exists. Raw records simply
// lack the enrichment fields.
func LoadPlantsWithFallback(preferredPath, fallbackPath string) ([]Plant, error) {
	plants, err := LoadPlants(preferredPath)
	if err == nil {
		return plants, nil
	}
	if !errors.IsCategory(err, errors.CategoryFileIO) {
		return nil, err
	}
	return LoadPlants(fallbackPath)
}

var answerWhitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeAnswer lowercases an answer and collapses its whitespace so
// cosmetic differences don't count as wrong answers.
func NormalizeAnswer(answer string) string {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	return answerWhitespaceRe.ReplaceAllString(normalized, " ")
}

// CheckAnswer compares a given answer against the expected one after
// normalization.
func CheckAnswer(expected, given string) bool {
	return NormalizeAnswer(expected) == NormalizeAnswer(given)
}
