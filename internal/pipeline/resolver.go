package pipeline

import (
	"context"
	"fmt"

	"github.com/habistat-labs/habistat/internal/classifier"
)

// resolveLocations maps every distinct canonical location key observed in
// the classified rows to a persisted location identifier, creating locations
// that do not exist yet.
//
// Reconciliation is a sequential reuse-or-create loop: the locations table
// has no composite unique constraint on (name, type, state), so a bulk
// upsert cannot be keyed safely. A failure creating one location leaves that
// key absent from the map and does not abort the others. Failing to read the
// existing location set is fatal, because proceeding would re-create every
// location.
func (p *Processor) resolveLocations(ctx context.Context, rows []classifier.Row) (map[classifier.LocationKey]string, error) {
	existing, err := p.store.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing locations: %w", err)
	}

	byKey := make(map[classifier.LocationKey]string, len(existing))
	for _, loc := range existing {
		key := classifier.LocationKey{Name: loc.Name, Type: loc.Type, State: loc.State}
		byKey[key] = loc.ID
	}

	distinct := make(map[classifier.LocationKey]struct{}, len(rows))
	for _, row := range rows {
		distinct[row.Key] = struct{}{}
	}

	resolved := make(map[classifier.LocationKey]string, len(distinct))
	created := 0
	for key := range distinct {
		if id, ok := byKey[key]; ok {
			resolved[key] = id
			continue
		}

		loc, err := p.store.CreateLocation(ctx, key.Type, key.Name, key.State)
		if err != nil {
			p.logger.Error("failed to create location",
				"name", key.Name, "type", key.Type, "state", key.State, "error", err)
			continue
		}
		resolved[key] = loc.ID
		created++
	}

	p.logger.Debug("resolved locations", "distinct", len(distinct), "created", created)
	return resolved, nil
}
