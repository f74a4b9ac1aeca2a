// Package parser splits the authority's semicolon-delimited price-index CSV
// into typed rows, tolerating the malformed lines that show up in real
// exports.
package parser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/habistat-labs/habistat/internal/encoding"
)

// minFields is the number of semicolon-separated fields a data line must
// carry to be usable: sequence, category, state, municipality, quarter,
// year and index value.
const minFields = 7

// RawRow is the literal content of one CSV data line. Value keeps the index
// value as text; numeric conversion happens when price records are built.
type RawRow struct {
	Seq          int
	Category     string
	State        string
	Municipality string
	Quarter      int
	Year         int
	Value        string
}

// Parser turns raw CSV bytes into RawRows.
type Parser struct {
	normalizer *encoding.Normalizer
	logger     *slog.Logger
}

// New creates a Parser. If logger is nil, a discard logger is used.
func New(normalizer *encoding.Normalizer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{normalizer: normalizer, logger: logger}
}

// Parse decodes raw file bytes and returns one RawRow per well-formed data
// line. The header line is always skipped; blank lines and lines with fewer
// than seven fields are dropped without error.
func (p *Parser) Parse(raw []byte) []RawRow {
	content := encoding.Decode(raw)
	lines := strings.Split(content, "\n")

	var rows []RawRow
	dropped := 0
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) < minFields {
			dropped++
			continue
		}

		rows = append(rows, RawRow{
			Seq:          p.parseInt(fields[0]),
			Category:     p.cleanField(fields[1]),
			State:        p.cleanField(fields[2]),
			Municipality: p.cleanField(fields[3]),
			Quarter:      p.parseInt(fields[4]),
			Year:         p.parseInt(fields[5]),
			Value:        strings.ReplaceAll(strings.TrimSpace(fields[6]), ",", "."),
		})
	}

	p.logger.Debug("parsed csv", "rows", len(rows), "dropped", dropped)
	return rows
}

// cleanField trims a text field and repairs its encoding.
func (p *Parser) cleanField(s string) string {
	return p.normalizer.Fix(strings.TrimSpace(s))
}

// parseInt converts a numeric field, defaulting to 0 on bad input.
func (p *Parser) parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
