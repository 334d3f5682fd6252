// Package backend opens the configured snapshot and holder stores.
package backend

import (
	"context"
	"fmt"
	"time"

	"holder-flow/internal/config"
	"holder-flow/internal/domain"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage"
	chstore "holder-flow/internal/storage/clickhouse"
	"holder-flow/internal/storage/memory"
	"holder-flow/internal/storage/migrations"
	pgstore "holder-flow/internal/storage/postgres"
	"holder-flow/internal/storage/sqlite"
)

// statusDays is the window of daily counts reported by Status.
const statusDays = 7

// Stores holds the opened backends.
type Stores struct {
	// Primary is the write path. It assigns sequence ids.
	Primary storage.SnapshotStore
	// Mirror is the ClickHouse analytics copy; nil unless snapshot_source is clickhouse.
	Mirror storage.SnapshotStore
	// Snapshots is the read path used by analytics: Mirror when set, otherwise Primary.
	Snapshots storage.SnapshotStore
	Holders   storage.HolderStore

	driver   string
	source   string
	chMirror *chstore.SnapshotStore
	closers  []func()
	now      func() time.Time
}

// Open connects to the backends selected by cfg and applies migrations.
// Snapshot stores are instrumented with m.
func Open(ctx context.Context, cfg config.StorageConfig, m *observability.Metrics, log *logger.Logger) (*Stores, error) {
	if log == nil {
		log = logger.Discard()
	}
	s := &Stores{driver: cfg.Driver, source: cfg.SnapshotSource, now: time.Now}

	var primary storage.SnapshotStore
	switch cfg.Driver {
	case "memory":
		primary = memory.NewSnapshotStore()
		s.Holders = memory.NewHolderStore()
		log.Warnf("using in-memory storage; data is lost on exit")

	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN, cfg.PostgresConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		primary = pgstore.NewSnapshotStore(pool)
		s.Holders = pgstore.NewHolderStore(pool)
		log.Infof("connected to postgres")

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close() })
		primary = sqlite.NewSnapshotStore(db)
		s.Holders = sqlite.NewHolderStore(db)
		log.Infof("opened sqlite database %s", cfg.SQLitePath)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	s.Primary = observability.InstrumentSnapshots(primary, cfg.Driver, m)
	s.Snapshots = s.Primary

	if cfg.SnapshotSource == "clickhouse" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })
		s.chMirror = chstore.NewSnapshotStore(conn)
		s.Mirror = observability.InstrumentSnapshots(s.chMirror, "clickhouse", m)
		s.Snapshots = s.Mirror
		log.Infof("reading snapshots from clickhouse mirror")
	}

	return s, nil
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Status describes the open backends. With a ClickHouse mirror it includes the daily
// snapshot volume of the last week.
type Status struct {
	Driver         string               `json:"driver"`
	SnapshotSource string               `json:"snapshot_source"`
	DailyCounts    []chstore.DailyCount `json:"daily_counts,omitempty"`
}

// Status reports backend state for the status endpoint.
func (s *Stores) Status(ctx context.Context) (any, error) {
	st := Status{Driver: s.driver, SnapshotSource: s.source}
	if s.chMirror != nil {
		end := domain.DateOf(s.now().UTC())
		counts, err := s.chMirror.DailyCounts(ctx, end.AddDays(-(statusDays - 1)), end)
		if err != nil {
			return nil, fmt.Errorf("clickhouse daily counts: %w", err)
		}
		st.DailyCounts = counts
	}
	return st, nil
}
