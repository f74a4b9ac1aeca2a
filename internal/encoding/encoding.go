package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// candidate is one entry in the prioritized decode list.
type candidate struct {
	name string
	enc  encoding.Encoding
}

// candidates are tried in order. The authority's exports are usually
// windows-1252; ISO-8859-1 is the fallback for older files, UTF-8 last.
var candidates = []candidate{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
	{"utf-8", unicode.UTF8},
}

// Decode converts raw file bytes to a UTF-8 string. Each candidate encoding
// is tried in priority order and the first one that decodes without
// replacement runes wins; if none is clean, the candidate with the fewest
// replacement runes is used. A decode that fails outright falls through to
// the next candidate, with UTF-8 as the final fallback.
func Decode(raw []byte) string {
	best := ""
	bestCount := -1

	for _, c := range candidates {
		decoded, err := c.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}

		s := string(decoded)
		count := strings.Count(s, string(utf8.RuneError))
		if count == 0 {
			return s
		}
		if bestCount < 0 || count < bestCount {
			best = s
			bestCount = count
		}
	}

	if bestCount >= 0 {
		return best
	}
	return string(raw)
}
