// Package pipeline runs the price-index ingestion pipeline: parse the
// uploaded CSV, classify rows into the location hierarchy, reconcile
// locations against storage, build price records and persist them in
// batches, all under one audit upload log.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/habistat-labs/habistat/internal/classifier"
	"github.com/habistat-labs/habistat/internal/encoding"
	"github.com/habistat-labs/habistat/internal/parser"
	"github.com/habistat-labs/habistat/internal/store"
)

// DefaultBatchSize bounds how many price records one upsert batch carries.
const DefaultBatchSize = 1000

// Result is what the caller gets back from an ingestion run. The pipeline
// never surfaces a raw error; failures are folded into Error.
type Result struct {
	Success          bool   `json:"success"`
	RecordsProcessed int    `json:"records_processed"`
	Error            string `json:"error,omitempty"`
}

// Processor coordinates one ingestion run end to end. Stages execute
// strictly in sequence; each fully consumes its predecessor's output. A
// Processor is stateless across runs and safe to reuse.
type Processor struct {
	store      store.Store
	parser     *parser.Parser
	classifier *classifier.Classifier
	batchSize  int
	logger     *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithBatchSize overrides the upsert batch size.
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewProcessor creates a Processor over the given store. If logger is nil, a
// discard logger is used.
func NewProcessor(st store.Store, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Processor{
		store:      st,
		parser:     parser.New(encoding.NewNormalizer(), logger),
		classifier: classifier.New(),
		batchSize:  DefaultBatchSize,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest runs the full pipeline over one uploaded file. An upload log entry
// is created in processing state before any row is parsed and moved exactly
// once to completed or failed. Row-level problems (malformed lines,
// unresolvable references, failed batches) are tallied and logged but never
// fail the run; only an inability to create the log entry or to read the
// persisted location set does.
func (p *Processor) Ingest(ctx context.Context, content []byte, filename string) (result Result) {
	p.logger.Info("starting ingestion", "filename", filename, "bytes", len(content))

	uploadLog, err := p.store.CreateUploadLog(ctx, filename)
	if err != nil {
		msg := fmt.Sprintf("failed to create upload log: %v", err)
		p.logger.Error("ingestion aborted", "filename", filename, "error", msg)
		return Result{Error: msg}
	}

	// A panic anywhere in the pipeline becomes a failure result. The log
	// entry stays in processing state in that case; there is no reliable
	// way to update it while unwinding.
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("unexpected failure during ingestion: %v", r)
			p.logger.Error("ingestion panicked", "filename", filename, "error", msg)
			result = Result{Error: msg}
		}
	}()

	rows := p.parser.Parse(content)
	classified := p.classifier.ClassifyAll(rows)
	p.logger.Debug("classified rows", "total", len(rows), "residential", len(classified))

	locations, err := p.resolveLocations(ctx, classified)
	if err != nil {
		msg := err.Error()
		p.logger.Error("ingestion failed", "filename", filename, "error", msg)
		if uerr := p.store.UpdateUploadLog(ctx, uploadLog.ID, store.UploadFailed, 0, msg); uerr != nil {
			p.logger.Error("failed to mark upload log failed", "id", uploadLog.ID, "error", uerr)
		}
		return Result{Error: msg}
	}

	records := p.buildRecords(ctx, classified, locations)
	p.persistBatches(ctx, records)

	if err := p.store.UpdateUploadLog(ctx, uploadLog.ID, store.UploadCompleted, len(records), ""); err != nil {
		p.logger.Error("failed to mark upload log completed", "id", uploadLog.ID, "error", err)
	}

	p.logger.Info("ingestion completed", "filename", filename, "records", len(records))
	return Result{Success: true, RecordsProcessed: len(records)}
}
