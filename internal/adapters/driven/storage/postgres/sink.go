// Package postgres copies merged datasets into a PostgreSQL table.
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// batchSize bounds the number of inserts queued per round trip.
const batchSize = 500

const createTable = `
	CREATE TABLE IF NOT EXISTS extracted_records (
		dataset TEXT NOT NULL,
		record_key TEXT NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		PRIMARY KEY (dataset, record_key)
	)
`

const insertRecord = `
	INSERT INTO extracted_records (dataset, record_key, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (dataset, record_key) DO NOTHING
`

// Ensure Sink implements the interface.
var _ driven.RecordSink = (*Sink)(nil)

// Sink writes records to extracted_records.
// Records are keyed by a content hash, so re-running an overlapping crawl
// does not duplicate rows.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink connects to dsn and ensures the table exists.
func NewSink(ctx context.Context, dsn string) (*Sink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres dsn: %v", domain.ErrInvalidInput, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &Sink{pool: pool}, nil
}

// WriteDataset inserts every record of ds.
func (s *Sink) WriteDataset(ctx context.Context, ds domain.Dataset) error {
	inserted := 0
	for start := 0; start < len(ds.Records); start += batchSize {
		end := min(start+batchSize, len(ds.Records))

		batch := &pgx.Batch{}
		for _, r := range ds.Records[start:end] {
			data, key, err := encodeRecord(r)
			if err != nil {
				return fmt.Errorf("encode %s record: %w", ds.Name, err)
			}
			batch.Queue(insertRecord, ds.Name, key, data)
		}

		results := s.pool.SendBatch(ctx, batch)
		for range end - start {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("insert %s records: %w", ds.Name, err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("insert %s records: %w", ds.Name, err)
		}
	}

	logger.Info("dataset copied to postgres",
		"dataset", ds.Name, "records", len(ds.Records), "inserted", inserted)
	return nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

// encodeRecord returns the JSON document and its idempotency key.
// encoding/json sorts map keys, so equal records hash equally.
func encodeRecord(r domain.FlatRecord) (json.RawMessage, string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}
