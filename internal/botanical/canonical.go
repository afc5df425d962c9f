package botanical

import "regexp"

var (
	parenthesizedRe = regexp.MustCompile(`\([^)]*\)`)
	// Genus species with an optional infraspecific rank marker and epithet.
	structuredNameRe = regexp.MustCompile(`^([A-Z][a-z]+)\s+([a-z]+)(?:\s+(?:var\.|subsp\.|f\.|forma|subspecies|variety)\s+([a-z]+))?`)
	simpleNameRe     = regexp.MustCompile(`^([A-Z][a-z]+)\s+([a-z]+)`)
)

// CanonicalName extracts the canonical name parts from a full botanical name,
// removing author citations and rank markers. Examples:
//
//	"Euonymus sachalinensis (F.Schmidt) Maxim."          -> "Euonymus sachalinensis"
//	"Symphoricarpos albus var. laevigatus (Fernald) S.F.Blake" -> "Symphoricarpos albus laevigatus"
//	"Acer palmatum Thunb."                               -> "Acer palmatum"
//
// This is a best-effort canonicalizer used to decide whether a name actually
// changed. It is lenient: when the structured pattern fails it falls back to a
// bare genus+species match, and when even that fails it returns the input
// unchanged.
func CanonicalName(fullName string) string {
	// Parenthesized spans are basionym author citations.
	cleaned := parenthesizedRe.ReplaceAllString(fullName, "")

	if m := structuredNameRe.FindStringSubmatch(cleaned); m != nil {
		genus, species, infraspecific := m[1], m[2], m[3]
		if infraspecific != "" {
			return genus + " " + species + " " + infraspecific
		}
		return genus + " " + species
	}

	if m := simpleNameRe.FindStringSubmatch(fullName); m != nil {
		return m[1] + " " + m[2]
	}
	return fullName
}
