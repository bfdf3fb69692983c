package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contract_extractions (
	id            UUID PRIMARY KEY,
	source_path   TEXT NOT NULL,
	content_hash  BYTEA NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT,
	record        JSONB NOT NULL,
	full_text     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS contract_extractions_hash_idx
	ON contract_extractions (content_hash, created_at DESC);
`

// PostgresStore keeps runs in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and bootstraps the schema.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*PostgresStore, error) {
	logger.Info("connecting to database", "driver", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "contract-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := pool.Exec(dialCtx, postgresSchema); err != nil {
		pool.Close()
		logger.Error("failed to create schema", "error", err)
		return nil, fmt.Errorf("%w: create schema: %v", common.ErrDatabase, err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Save(ctx context.Context, run entity.ExtractionRun) error {
	row, err := toRow(run)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO contract_extractions
			(id, source_path, content_hash, status, error_message, record, full_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.SourcePath, row.ContentHash, row.Status, row.ErrorMessage, string(row.Record), row.FullText, row.CreatedAt,
	)
	if err != nil {
		s.logger.Error("contract_extractions insert failed", "id", row.ID, "err", err)
		return fmt.Errorf("%w: save run: %v", common.ErrDatabase, err)
	}
	s.logger.Debug("contract_extractions saved", "id", row.ID, "status", row.Status, "path", row.SourcePath)
	return nil
}

const pgSelectRun = `
	SELECT id::text, source_path, content_hash, status, error_message, record::text, full_text, created_at
	FROM contract_extractions`

func scanPgRun(r pgx.Row) (runRow, error) {
	var row runRow
	var rec string
	err := r.Scan(&row.ID, &row.SourcePath, &row.ContentHash, &row.Status, &row.ErrorMessage, &rec, &row.FullText, &row.CreatedAt)
	row.Record = []byte(rec)
	return row, err
}

func (s *PostgresStore) GetByHash(ctx context.Context, hash []byte) (entity.ExtractionRun, error) {
	row, err := scanPgRun(s.pool.QueryRow(ctx, pgSelectRun+`
		WHERE content_hash = $1
		ORDER BY created_at DESC
		LIMIT 1`, hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ExtractionRun{}, common.ErrNotFound
	}
	if err != nil {
		return entity.ExtractionRun{}, fmt.Errorf("%w: get run: %v", common.ErrDatabase, err)
	}
	return row.toEntity()
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, pgSelectRun+`
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ExtractionRun
	for rows.Next() {
		row, err := scanPgRun(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
		}
		run, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// HealthCheck pings the pool.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s.logger.Debug("pinging database")
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
