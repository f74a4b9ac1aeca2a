// Package store owns the persisted schema for the price-index service and
// the storage contract consumed by the ingestion pipeline. Two backends are
// provided: PostgreSQL for deployments and SQLite for local runs and tests.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LocationType is the level a location occupies in the hierarchy.
type LocationType string

const (
	LocationNational     LocationType = "national"
	LocationState        LocationType = "state"
	LocationMunicipality LocationType = "municipality"
	LocationMetroZone    LocationType = "metro_zone"
)

// Property-type codes. The property_types table is reference data seeded by
// a migration; the pipeline only reads it.
const (
	PropertyNew            = "new"
	PropertyUsed           = "used"
	PropertySingleFamily   = "single_family"
	PropertyCondominium    = "condominium"
	PropertyMidResidential = "mid_residential"
)

// UploadStatus is the lifecycle state of an upload log entry.
type UploadStatus string

const (
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// Location is one node of the two-level location hierarchy. State is empty
// except for municipalities. ParentID links a municipality to its state row
// when known; the pipeline never sets or mutates it.
type Location struct {
	ID        string
	Type      LocationType
	Name      string
	State     string
	ParentID  *string
	CreatedAt time.Time
}

// PropertyType is one row of the fixed property-type reference table.
type PropertyType struct {
	ID   string
	Code string
	Name string
}

// PriceIndex is one quarterly observation for a location. PropertyTypeID is
// nil for type-agnostic observations. At most one row exists per
// (location, property type, quarter, year); writes go through an upsert.
type PriceIndex struct {
	ID             string
	LocationID     string
	PropertyTypeID *string
	Quarter        int
	Year           int
	IndexValue     float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UploadLog is the audit record for one ingestion run. It is created in
// processing state and moved exactly once to a terminal state.
type UploadLog struct {
	ID               string
	Filename         string
	Status           UploadStatus
	RecordsProcessed int
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Store is the storage collaborator contract for the ingestion pipeline.
// Every call is fallible and independently reportable; the pipeline decides
// per call whether a failure aborts the run.
type Store interface {
	// ListLocations returns all persisted locations.
	ListLocations(ctx context.Context) ([]*Location, error)

	// CreateLocation inserts a new location and returns it with its
	// assigned identifier. state is empty except for municipalities.
	CreateLocation(ctx context.Context, typ LocationType, name, state string) (*Location, error)

	// ListPropertyTypes returns the property-type reference table.
	ListPropertyTypes(ctx context.Context) ([]*PropertyType, error)

	// UpsertPriceIndices writes one batch of price records, replacing the
	// index value of any record matching on
	// (location, property type, quarter, year).
	UpsertPriceIndices(ctx context.Context, records []*PriceIndex) error

	// CreateUploadLog creates an upload log entry in processing state.
	CreateUploadLog(ctx context.Context, filename string) (*UploadLog, error)

	// UpdateUploadLog moves an upload log entry to its terminal state.
	UpdateUploadLog(ctx context.Context, id string, status UploadStatus, recordsProcessed int, errMsg string) error

	// ListUploadLogs returns the most recent upload log entries, newest
	// first, up to limit.
	ListUploadLogs(ctx context.Context, limit int) ([]*UploadLog, error)

	// Migrate applies any pending schema migrations.
	Migrate() error

	// Close releases the underlying database connection.
	Close() error
}

// Config selects and parameterizes a storage backend.
type Config struct {
	Type string `koanf:"type"` // postgres or sqlite

	// SQLite
	Database string `koanf:"database"` // file path, or :memory:

	// Postgres
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	DBName   string            `koanf:"dbname"`
	Options  map[string]string `koanf:"options"`
}

// Open connects the backend named by cfg.Type. The returned store is ready
// for queries but has not been migrated; call Migrate before first use of a
// fresh database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "postgres", "postgresql":
		return OpenPostgres(ctx, cfg, logger)
	case "sqlite", "":
		return OpenSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store type %q (supported: postgres, sqlite)", cfg.Type)
	}
}
