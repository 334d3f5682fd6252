// Package orchestrator coordinates a snapshot import.
// Per batch: decode → ordering check → holders → primary store → analytics mirror. Cached results are
// dropped once at the end.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"holder-flow/internal/domain"
	"holder-flow/internal/ingestion"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage"
)

// DefaultBatchSize is the number of records inserted per bulk write.
const DefaultBatchSize = 1000

// Source yields decoded batches, io.EOF when exhausted. *ingestion.Reader implements it.
type Source interface {
	Next(size int) (*ingestion.Batch, error)
}

// Invalidator drops cached analytics results.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Orchestrator coordinates the import execution.
type Orchestrator struct {
	source    Source
	snapshots storage.SnapshotStore
	holders   storage.HolderStore
	mirror    storage.SnapshotStore
	cache     Invalidator
	metrics   *observability.Metrics
	log       *logger.Logger
	batchSize int
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Source    Source
	Snapshots storage.SnapshotStore // primary store, assigns sequence ids

	// Optional
	Holders   storage.HolderStore
	Mirror    storage.SnapshotStore // analytics mirror, receives snapshots with assigned ids
	Cache     Invalidator
	Metrics   *observability.Metrics
	Logger    *logger.Logger
	BatchSize int
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Orchestrator{
		source:    opts.Source,
		snapshots: opts.Snapshots,
		holders:   opts.Holders,
		mirror:    opts.Mirror,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		batchSize: opts.BatchSize,
	}
}

// RunResult contains results from an import.
type RunResult struct {
	Batches           int
	SnapshotsImported int
	SnapshotsMirrored int
	HoldersCreated    int
	HoldersExisting   int
	Errors            []string // non-fatal: mirror and cache failures
}

// Run imports every batch from the source.
// Decoding, ordering and primary-store failures abort the run; batches already written stay written.
// Mirror and cache failures are collected in RunResult.Errors.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := o.source.Next(o.batchSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("batch %d (decode) failed: %w", result.Batches+1, err)
		}
		result.Batches++

		// Store-assigned sequence ids must follow recording order within a holder-day.
		if err := ingestion.ValidateSnapshotOrdering(batch.Snapshots); err != nil {
			return result, fmt.Errorf("batch %d (ordering) failed: %w", result.Batches, err)
		}

		if err := o.importHolders(ctx, batch.Holders, result); err != nil {
			return result, fmt.Errorf("batch %d (holders) failed: %w", result.Batches, err)
		}

		if err := o.snapshots.InsertBulk(ctx, batch.Snapshots); err != nil {
			return result, fmt.Errorf("batch %d (snapshots) failed: %w", result.Batches, err)
		}
		result.SnapshotsImported += len(batch.Snapshots)
		o.metrics.SnapshotsImported.Add(float64(len(batch.Snapshots)))

		if o.mirror != nil {
			if err := o.mirror.InsertBulk(ctx, batch.Snapshots); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("mirror batch %d: %v", result.Batches, err))
			} else {
				result.SnapshotsMirrored += len(batch.Snapshots)
			}
		}

		o.log.Debugf("batch %d: %d snapshots, %d holders", result.Batches, len(batch.Snapshots), len(batch.Holders))
	}

	if result.SnapshotsImported > 0 && o.cache != nil {
		if err := o.cache.Invalidate(ctx); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("invalidate cache: %v", err))
		}
	}

	o.log.Infof("import completed: %d snapshots in %d batches, %d holders created (%d errors)",
		result.SnapshotsImported, result.Batches, result.HoldersCreated, len(result.Errors))
	return result, nil
}

// importHolders inserts named holders. Existing holders keep their stored name.
func (o *Orchestrator) importHolders(ctx context.Context, holders []*domain.Holder, result *RunResult) error {
	if o.holders == nil {
		return nil
	}
	for _, h := range holders {
		err := o.holders.Insert(ctx, h)
		switch {
		case err == nil:
			result.HoldersCreated++
		case errors.Is(err, storage.ErrDuplicateKey):
			result.HoldersExisting++
		default:
			return fmt.Errorf("insert holder %s: %w", h.ID, err)
		}
	}
	return nil
}
