package botanical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"author citation stripped", "Euonymus sachalinensis (F.Schmidt) Maxim.", "Euonymus sachalinensis"},
		{"trailing author stripped", "Acer palmatum Thunb.", "Acer palmatum"},
		{"variety rank collapsed", "Symphoricarpos albus var. laevigatus (Fernald) S.F.Blake", "Symphoricarpos albus laevigatus"},
		{"subspecies rank collapsed", "Acer tataricum subsp. ginnala Maxim.", "Acer tataricum ginnala"},
		{"forma rank collapsed", "Rosa rugosa forma alba Rehder", "Rosa rugosa alba"},
		{"bare binomial unchanged", "Fagus sylvatica", "Fagus sylvatica"},
		{"unparseable input returned unchanged", "×Cupressocyparis", "×Cupressocyparis"},
		{"empty input", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanonicalName(tc.input))
		})
	}
}

// TestCanonicalNameIdempotent verifies canonical output passes through
// unchanged when fed back in.
func TestCanonicalNameIdempotent(t *testing.T) {
	inputs := []string{
		"Euonymus sachalinensis (F.Schmidt) Maxim.",
		"Symphoricarpos albus var. laevigatus (Fernald) S.F.Blake",
		"Acer palmatum",
	}

	for _, input := range inputs {
		canonical := CanonicalName(input)
		assert.Equal(t, canonical, CanonicalName(canonical), "not idempotent for %q", input)
	}
}
