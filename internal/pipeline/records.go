package pipeline

import (
	"context"
	"strconv"

	"github.com/habistat-labs/habistat/internal/classifier"
	"github.com/habistat-labs/habistat/internal/store"
)

// buildRecords joins classified rows against the resolved location map and
// the property-type reference table to produce price-index records.
//
// Rows whose location did not resolve, or whose index value does not parse,
// are skipped and tallied. A property-type tag that cannot be resolved
// degrades the row to a type-agnostic record rather than skipping it. The
// reference table is read fresh each run; if the read fails, every tagged
// row degrades the same way.
func (p *Processor) buildRecords(ctx context.Context, rows []classifier.Row, locations map[classifier.LocationKey]string) []*store.PriceIndex {
	propertyTypes := p.loadPropertyTypes(ctx)

	records := make([]*store.PriceIndex, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		locationID, ok := locations[row.Key]
		if !ok {
			skipped++
			continue
		}

		value, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			skipped++
			continue
		}

		var propertyTypeID *string
		if row.PropertyCode != "" {
			if id, ok := propertyTypes[row.PropertyCode]; ok {
				propertyTypeID = &id
			}
		}

		records = append(records, &store.PriceIndex{
			LocationID:     locationID,
			PropertyTypeID: propertyTypeID,
			Quarter:        row.Quarter,
			Year:           row.Year,
			IndexValue:     value,
		})
	}

	p.logger.Debug("built price records", "records", len(records), "skipped", skipped)
	return records
}

// loadPropertyTypes reads the reference table into a code-to-id map. A read
// failure is logged and yields an empty map.
func (p *Processor) loadPropertyTypes(ctx context.Context) map[string]string {
	types, err := p.store.ListPropertyTypes(ctx)
	if err != nil {
		p.logger.Error("failed to load property types", "error", err)
		return map[string]string{}
	}

	byCode := make(map[string]string, len(types))
	for _, pt := range types {
		byCode[pt.Code] = pt.ID
	}
	return byCode
}
