package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sqlStore is the shared database/sql implementation behind both backends.
// Queries are written with ? placeholders; rebind translates them to the
// backend's placeholder style.
type sqlStore struct {
	db     *sql.DB
	logger *slog.Logger
	rebind func(string) string
}

func newSQLStore(db *sql.DB, logger *slog.Logger, rebind func(string) string) sqlStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rebind == nil {
		rebind = func(q string) string { return q }
	}
	return sqlStore{db: db, logger: logger, rebind: rebind}
}

// rebindPostgres rewrites ? placeholders as $1..$n.
func rebindPostgres(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Location operations ---

func (s *sqlStore) ListLocations(ctx context.Context) ([]*Location, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, type, name, state, parent_id, created_at FROM locations ORDER BY name`,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		loc := &Location{}
		var parentID sql.NullString
		if err := rows.Scan(&loc.ID, &loc.Type, &loc.Name, &loc.State, &parentID, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		if parentID.Valid {
			loc.ParentID = &parentID.String
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}

func (s *sqlStore) CreateLocation(ctx context.Context, typ LocationType, name, state string) (*Location, error) {
	loc := &Location{
		ID:        uuid.New().String(),
		Type:      typ,
		Name:      name,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO locations (id, type, name, state, created_at) VALUES (?, ?, ?, ?, ?)`,
	), loc.ID, loc.Type, loc.Name, loc.State, loc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create location %q: %w", name, err)
	}

	s.logger.Debug("created location", "name", name, "type", typ, "state", state)
	return loc, nil
}

// --- Property type operations ---

func (s *sqlStore) ListPropertyTypes(ctx context.Context) ([]*PropertyType, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, code, name FROM property_types ORDER BY code`,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list property types: %w", err)
	}
	defer rows.Close()

	var types []*PropertyType
	for rows.Next() {
		pt := &PropertyType{}
		if err := rows.Scan(&pt.ID, &pt.Code, &pt.Name); err != nil {
			return nil, fmt.Errorf("failed to scan property type: %w", err)
		}
		types = append(types, pt)
	}

	return types, rows.Err()
}

// --- Price index operations ---

// upsertPriceIndexSQL replaces the index value when a record already exists
// for the same series key. COALESCE folds the nullable property type into
// the unique index expression so type-agnostic records conflict correctly.
const upsertPriceIndexSQL = `INSERT INTO price_indices
	(id, location_id, property_type_id, quarter, year, index_value, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (location_id, COALESCE(property_type_id, ''), quarter, year)
	DO UPDATE SET index_value = EXCLUDED.index_value, updated_at = EXCLUDED.updated_at`

func (s *sqlStore) UpsertPriceIndices(ctx context.Context, records []*PriceIndex) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsertPriceIndexSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.New().String()
		}
		var propertyTypeID sql.NullString
		if rec.PropertyTypeID != nil {
			propertyTypeID = sql.NullString{String: *rec.PropertyTypeID, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			id, rec.LocationID, propertyTypeID, rec.Quarter, rec.Year, rec.IndexValue, now, now,
		); err != nil {
			return fmt.Errorf("failed to upsert price index for location %s: %w", rec.LocationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert batch: %w", err)
	}

	return nil
}

// --- Upload log operations ---

func (s *sqlStore) CreateUploadLog(ctx context.Context, filename string) (*UploadLog, error) {
	now := time.Now().UTC()
	log := &UploadLog{
		ID:        uuid.New().String(),
		Filename:  filename,
		Status:    UploadProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO upload_logs (id, filename, status, records_processed, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	), log.ID, log.Filename, log.Status, 0, "", log.CreatedAt, log.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload log: %w", err)
	}

	return log, nil
}

func (s *sqlStore) UpdateUploadLog(ctx context.Context, id string, status UploadStatus, recordsProcessed int, errMsg string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE upload_logs SET status = ?, records_processed = ?, error = ?, updated_at = ? WHERE id = ?`,
	), status, recordsProcessed, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("upload log not found: %s", id)
	}

	return nil
}

func (s *sqlStore) ListUploadLogs(ctx context.Context, limit int) ([]*UploadLog, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, filename, status, records_processed, error, created_at, updated_at
		 FROM upload_logs ORDER BY created_at DESC LIMIT ?`,
	), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload logs: %w", err)
	}
	defer rows.Close()

	var logs []*UploadLog
	for rows.Next() {
		l := &UploadLog{}
		if err := rows.Scan(&l.ID, &l.Filename, &l.Status, &l.RecordsProcessed, &l.Error, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
