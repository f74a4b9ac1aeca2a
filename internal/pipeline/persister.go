package pipeline

import (
	"context"

	"github.com/habistat-labs/habistat/internal/store"
)

// persistBatches writes price records in consecutive bounded batches.
// Batches are issued sequentially; a failed batch is logged and the
// remaining batches are still attempted. Committed batches are never rolled
// back; the upsert makes a full re-run the recovery path.
func (p *Processor) persistBatches(ctx context.Context, records []*store.PriceIndex) {
	if len(records) == 0 {
		return
	}

	batches := 0
	failed := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}

		batches++
		if err := p.store.UpsertPriceIndices(ctx, records[start:end]); err != nil {
			failed++
			p.logger.Error("failed to persist batch",
				"batch", batches, "size", end-start, "error", err)
		}
	}

	p.logger.Debug("persisted price records", "records", len(records), "batches", batches, "failed_batches", failed)
}
