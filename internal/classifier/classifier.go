// Package classifier decides which price-index rows belong to the
// residential subset and derives the canonical location key each row
// observes.
package classifier

import (
	"strings"

	"github.com/habistat-labs/habistat/internal/parser"
	"github.com/habistat-labs/habistat/internal/store"
)

const (
	// nationalCategory marks a country-wide observation.
	nationalCategory = "Nacional"

	// metroZonePrefix marks a metropolitan-zone observation, e.g.
	// "ZM Guadalajara".
	metroZonePrefix = "ZM "

	// excludedCategory is the government/social-housing series, which is
	// outside the residential subset.
	excludedCategory = "Economica - Social"
)

// LocationKey uniquely identifies one location within an ingestion run.
// State is empty except for municipalities, where it disambiguates
// same-named municipalities in different states.
type LocationKey struct {
	Name  string
	Type  store.LocationType
	State string
}

// Row is a parsed row that survived classification. PropertyCode is empty
// unless the row's category is a property-type label.
type Row struct {
	parser.RawRow
	Key          LocationKey
	PropertyCode string
}

// Classifier holds the property-type label table. Construct one per
// processor; it is immutable.
type Classifier struct {
	propertyCodes map[string]string
}

// New creates a Classifier with the fixed label-to-code table used by the
// authority's category column.
func New() *Classifier {
	return &Classifier{
		propertyCodes: map[string]string{
			"Nueva":                      store.PropertyNew,
			"Usada":                      store.PropertyUsed,
			"Casa sola":                  store.PropertySingleFamily,
			"Departamento en condominio": store.PropertyCondominium,
			"Vivienda media-residencial": store.PropertyMidResidential,
		},
	}
}

// Classify derives the canonical location key for a raw row. The boolean is
// false when the row is outside the residential subset or matches no
// classification rule; such rows are discarded by the caller.
//
// Rules are applied in priority order: national marker, metro-zone prefix,
// state-only, state plus municipality, property-type label. Only the last
// carries a property-type code.
func (c *Classifier) Classify(row parser.RawRow) (Row, bool) {
	if row.Category == excludedCategory {
		return Row{}, false
	}

	classified := Row{RawRow: row}

	switch {
	case row.Category == nationalCategory:
		classified.Key = nationalKey()

	case strings.HasPrefix(row.Category, metroZonePrefix):
		classified.Key = LocationKey{Name: row.Category, Type: store.LocationMetroZone}

	case row.State != "" && row.Municipality == "":
		classified.Key = LocationKey{Name: row.State, Type: store.LocationState}

	case row.State != "" && row.Municipality != "":
		classified.Key = LocationKey{
			Name:  row.Municipality,
			Type:  store.LocationMunicipality,
			State: row.State,
		}

	default:
		code, ok := c.propertyCodes[row.Category]
		if !ok {
			return Row{}, false
		}
		classified.Key = nationalKey()
		classified.PropertyCode = code
	}

	return classified, true
}

// ClassifyAll classifies a batch of raw rows, dropping the ones outside the
// residential subset.
func (c *Classifier) ClassifyAll(rows []parser.RawRow) []Row {
	classified := make([]Row, 0, len(rows))
	for _, row := range rows {
		if cr, ok := c.Classify(row); ok {
			classified = append(classified, cr)
		}
	}
	return classified
}

func nationalKey() LocationKey {
	return LocationKey{Name: nationalCategory, Type: store.LocationNational}
}
