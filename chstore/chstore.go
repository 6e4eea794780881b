// Package chstore persists simulation result histories to ClickHouse,
// one row per (run, iteration, result key), so long runs can be queried
// and plotted outside the process that produced them.
package chstore

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"

	"github.com/asiclab/sfgsim"
)

// DefaultTable is the table used when Options leaves Table empty.
const DefaultTable = "sfg_results"

// Options configures a Store.
type Options struct {
	// DSN in clickhouse-go form, e.g.
	// "clickhouse://default:@localhost:9000/sfgsim".
	DSN string
	// Table name; DefaultTable when empty.
	Table string
}

// A Store is a ClickHouse-backed sink for simulation results.
type Store struct {
	conn  driver.Conn
	table string
}

// Open connects to ClickHouse and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	cfg, err := clickhouse.ParseDSN(opts.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "chstore: parse dsn")
	}
	conn, err := clickhouse.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "chstore: open")
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "chstore: ping")
	}
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	return &Store{conn: conn, table: table}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureTable creates the results table if it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id    String,
		key       String,
		iteration UInt32,
		re        Float64,
		im        Float64
	) ENGINE = MergeTree()
	ORDER BY (run_id, key, iteration)`, s.table)
	return errors.Wrap(s.conn.Exec(ctx, ddl), "chstore: create table")
}

// SaveResults writes the simulation's saved history under runID in one
// batch. Iteration numbers count from the end of the history backwards,
// so they line up with the simulation's iteration counter even when
// earlier iterations were run without saving.
func (s *Store) SaveResults(ctx context.Context, runID string, sim *sfgsim.Simulation) error {
	results := sim.Results()
	if len(results) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return errors.Wrap(err, "chstore: prepare batch")
	}
	for key, values := range results {
		base := sim.Iteration() - uint32(len(values))
		for n, v := range values {
			if err := batch.Append(runID, key, base+uint32(n), real(v), imag(v)); err != nil {
				return errors.Wrapf(err, "chstore: append %s[%d]", key, n)
			}
		}
	}
	return errors.Wrap(batch.Send(), "chstore: send batch")
}
