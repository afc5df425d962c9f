// Package botanical provides parsing and normalization of Latin plant names.
package botanical

import (
	"regexp"
	"strings"
)

// The order of these transformations matters: later removals assume quoted
// material has already been stripped.
var (
	quotedRe     = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	varietyRe    = regexp.MustCompile(`(?i)\s+(var|v)\.\s+\S+`)
	formRe       = regexp.MustCompile(`(?i)\s+f\.\s+\S+`)
	cultivarRe   = regexp.MustCompile(`(?i)\s+cv\.\s+\S+`)
	subspeciesRe = regexp.MustCompile(`(?i)\s+subsp\.\s+`)
	uncertainRe  = regexp.MustCompile(`(?i)\s+sp\.?$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanLatinName strips cultivar, variety, form and rank notation from a raw
// Latin name so the remainder is searchable against taxonomy and observation
// services. Subspecies epithets are taxonomically significant and retained,
// unlike variety/form/cultivar epithets which are removed together with their
// markers. Always returns a string, possibly empty if the input was only
// markers.
func CleanLatinName(name string) string {
	cleaned := name

	// Anything in quotes is a cultivar epithet, e.g. 'Sibirica'.
	cleaned = quotedRe.ReplaceAllString(cleaned, "")

	// Variety (var. or v.), form (f.) and cultivar (cv.) notation plus the
	// following epithet word.
	cleaned = varietyRe.ReplaceAllString(cleaned, "")
	cleaned = formRe.ReplaceAllString(cleaned, "")
	cleaned = cultivarRe.ReplaceAllString(cleaned, "")

	// Drop the subsp. marker but keep the subspecies epithet.
	cleaned = subspeciesRe.ReplaceAllString(cleaned, " ")

	// Trailing "sp." or "sp" marks an uncertain species.
	cleaned = uncertainRe.ReplaceAllString(cleaned, "")

	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
