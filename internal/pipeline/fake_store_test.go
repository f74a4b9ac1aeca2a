package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/habistat-labs/habistat/internal/store"
)

// seriesKey mirrors the upsert conflict key of the price_indices table.
type seriesKey struct {
	LocationID     string
	PropertyTypeID string
	Quarter        int
	Year           int
}

// fakeStore is an in-memory Store with upsert semantics, plus failure
// injection knobs for the error-path tests.
type fakeStore struct {
	locations     []*store.Location
	propertyTypes []*store.PropertyType
	uploadLogs    map[string]*store.UploadLog
	records       map[seriesKey]*store.PriceIndex
	batches       [][]*store.PriceIndex

	failCreateUploadLog bool
	failListLocations   bool
	failCreateLocation  bool
	failUpsertBatch     int // 1-based batch number to fail, 0 for none
	failPropertyTypes   bool

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploadLogs: make(map[string]*store.UploadLog),
		records:    make(map[seriesKey]*store.PriceIndex),
		propertyTypes: []*store.PropertyType{
			{ID: "pt-new", Code: store.PropertyNew, Name: "Nueva"},
			{ID: "pt-used", Code: store.PropertyUsed, Name: "Usada"},
			{ID: "pt-single", Code: store.PropertySingleFamily, Name: "Casa sola"},
			{ID: "pt-condo", Code: store.PropertyCondominium, Name: "Departamento en condominio"},
			{ID: "pt-mid", Code: store.PropertyMidResidential, Name: "Vivienda media-residencial"},
		},
	}
}

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) ListLocations(context.Context) ([]*store.Location, error) {
	if f.failListLocations {
		return nil, errors.New("locations unavailable")
	}
	return append([]*store.Location(nil), f.locations...), nil
}

func (f *fakeStore) CreateLocation(_ context.Context, typ store.LocationType, name, state string) (*store.Location, error) {
	if f.failCreateLocation {
		return nil, errors.New("insert rejected")
	}
	loc := &store.Location{ID: f.genID("loc"), Type: typ, Name: name, State: state}
	f.locations = append(f.locations, loc)
	return loc, nil
}

func (f *fakeStore) ListPropertyTypes(context.Context) ([]*store.PropertyType, error) {
	if f.failPropertyTypes {
		return nil, errors.New("property types unavailable")
	}
	return append([]*store.PropertyType(nil), f.propertyTypes...), nil
}

func (f *fakeStore) UpsertPriceIndices(_ context.Context, records []*store.PriceIndex) error {
	f.batches = append(f.batches, records)
	if f.failUpsertBatch == len(f.batches) {
		return errors.New("batch write failed")
	}
	for _, rec := range records {
		key := seriesKey{LocationID: rec.LocationID, Quarter: rec.Quarter, Year: rec.Year}
		if rec.PropertyTypeID != nil {
			key.PropertyTypeID = *rec.PropertyTypeID
		}
		f.records[key] = rec
	}
	return nil
}

func (f *fakeStore) CreateUploadLog(_ context.Context, filename string) (*store.UploadLog, error) {
	if f.failCreateUploadLog {
		return nil, errors.New("upload log insert failed")
	}
	log := &store.UploadLog{ID: f.genID("log"), Filename: filename, Status: store.UploadProcessing}
	f.uploadLogs[log.ID] = log
	return log, nil
}

func (f *fakeStore) UpdateUploadLog(_ context.Context, id string, status store.UploadStatus, recordsProcessed int, errMsg string) error {
	log, ok := f.uploadLogs[id]
	if !ok {
		return fmt.Errorf("upload log not found: %s", id)
	}
	log.Status = status
	log.RecordsProcessed = recordsProcessed
	log.Error = errMsg
	return nil
}

func (f *fakeStore) ListUploadLogs(context.Context, int) ([]*store.UploadLog, error) {
	logs := make([]*store.UploadLog, 0, len(f.uploadLogs))
	for _, l := range f.uploadLogs {
		logs = append(logs, l)
	}
	return logs, nil
}

func (f *fakeStore) Migrate() error { return nil }
func (f *fakeStore) Close() error   { return nil }

// onlyUploadLog returns the single upload log entry, failing the test setup
// assumption when there is not exactly one.
func (f *fakeStore) onlyUploadLog() *store.UploadLog {
	if len(f.uploadLogs) != 1 {
		return nil
	}
	for _, l := range f.uploadLogs {
		return l
	}
	return nil
}

var _ store.Store = (*fakeStore)(nil)
