package botanical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLatinName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name unchanged", "Acer palmatum", "Acer palmatum"},
		{"single-quoted cultivar removed", "Cornus alba 'Sibirica'", "Cornus alba"},
		{"double-quoted cultivar removed", `Lonicera caprifolium "Winter Beauty"`, "Lonicera caprifolium"},
		{"trailing sp. removed", "Dahlia sp.", "Dahlia"},
		{"trailing sp without dot removed", "Heuchera sp", "Heuchera"},
		{"subsp. marker removed but epithet kept", "Acer tataricum subsp. ginnala", "Acer tataricum ginnala"},
		{"variety notation removed", "Malus toringo var. sargentii", "Malus toringo"},
		{"short variety notation removed", "Malus toringo v. sargentii", "Malus toringo"},
		{"form notation removed", "Rosa rugosa f. alba", "Rosa rugosa"},
		{"cultivar notation removed", "Prunus cv. Kanzan", "Prunus"},
		{"cultivar epithet in quotes removed", "Neillia incisa 'Crispa'", "Neillia incisa"},
		{"whitespace collapsed", "Fagus   sylvatica", "Fagus sylvatica"},
		{"empty input", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanLatinName(tc.input))
		})
	}
}

// TestCleanLatinNameNoResidue verifies no markers survive cleaning for a
// variety of composed inputs.
func TestCleanLatinNameNoResidue(t *testing.T) {
	inputs := []string{
		"Cornus alba 'Sibirica'",
		"Malus toringo var. sargentii",
		"Rosa rugosa f. alba",
		"Prunus cv. Kanzan",
		"Acer tataricum subsp. ginnala",
		"Dahlia sp.",
	}

	for _, input := range inputs {
		result := CleanLatinName(input)
		assert.NotContains(t, result, "'", "quoted material left in %q", result)
		assert.NotContains(t, result, `"`, "quoted material left in %q", result)
		assert.NotContains(t, result, "var.", "variety marker left in %q", result)
		assert.NotContains(t, result, "cv.", "cultivar marker left in %q", result)
		assert.NotContains(t, result, "subsp.", "subspecies marker left in %q", result)
		assert.NotContains(t, result, "  ", "uncollapsed whitespace in %q", result)
	}
}
