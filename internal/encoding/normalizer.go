// Package encoding repairs the byte-level damage found in published
// price-index CSV files: it auto-detects the source encoding and fixes
// accented characters that were garbled somewhere between the authority's
// export tooling and the download.
package encoding

import (
	"regexp"
	"strings"
)

// mojibakeFixes maps UTF-8 sequences misread as windows-1252 back to the
// intended character. Longer fragments come first so the replacer does not
// consume a prefix of a longer corruption.
var mojibakeFixes = []string{
	"Ã¡", "á",
	"Ã©", "é",
	"Ã­", "í",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã±", "ñ",
	"Ã¼", "ü",
	"Ã", "Á",
	"Ã", "É",
	"Ã", "Í",
	"Ã", "Ó",
	"Ã", "Ú",
	"Ã", "Ñ",
	"Â°", "°",
	"Â ", " ",
}

// placeNameFixes restores place names whose accented vowel was dropped
// entirely by the source system. Keys are matched on whole-word boundaries.
var placeNameFixes = map[string]string{
	"Mexico":          "México",
	"Mxico":           "México",
	"Michoacan":       "Michoacán",
	"Michoacn":        "Michoacán",
	"Nuevo Leon":      "Nuevo León",
	"Nuevo Len":       "Nuevo León",
	"Queretaro":       "Querétaro",
	"Quertaro":        "Querétaro",
	"Yucatan":         "Yucatán",
	"Yucatn":          "Yucatán",
	"San Luis Potosi": "San Luis Potosí",
	"San Luis Potos":  "San Luis Potosí",
	"Leon":            "León",
	"Len":             "León",
	"Juarez":          "Juárez",
	"Jurez":           "Juárez",
	"Cancun":          "Cancún",
	"Cancn":           "Cancún",
	"Culiacan":        "Culiacán",
	"Culiacn":         "Culiacán",
	"Mazatlan":        "Mazatlán",
	"Mazatln":         "Mazatlán",
	"Merida":          "Mérida",
	"Mrida":           "Mérida",
	"Torreon":         "Torreón",
	"Torren":          "Torreón",
}

type placeNameRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Normalizer repairs mis-encoded accented characters and known place-name
// corruptions in source text. Construct one per processor; it is immutable
// and safe for concurrent use.
type Normalizer struct {
	mojibake *strings.Replacer
	places   []placeNameRule
}

// NewNormalizer builds a Normalizer with the curated correction tables.
func NewNormalizer() *Normalizer {
	rules := make([]placeNameRule, 0, len(placeNameFixes))
	for broken, fixed := range placeNameFixes {
		rules = append(rules, placeNameRule{
			pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(broken) + `\b`),
			replacement: fixed,
		})
	}

	return &Normalizer{
		mojibake: strings.NewReplacer(mojibakeFixes...),
		places:   rules,
	}
}

// Fix returns s with known corruptions repaired. Unmatched patterns are left
// as-is; an empty string is returned unchanged. Fix is best-effort and never
// fails.
func (n *Normalizer) Fix(s string) string {
	if s == "" {
		return s
	}

	s = n.mojibake.Replace(s)
	for _, rule := range n.places {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}
