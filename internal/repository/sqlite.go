package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS contract_extractions (
		id            TEXT PRIMARY KEY,
		source_path   TEXT NOT NULL,
		content_hash  BLOB NOT NULL,
		status        TEXT NOT NULL,
		error_message TEXT,
		record        TEXT NOT NULL,
		full_text     TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS contract_extractions_hash_idx
		ON contract_extractions (content_hash, created_at DESC)`,
}

// sqliteTime is fixed-width so created_at sorts as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps runs in a local SQLite file (or memory).
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens dsn with the pure-Go driver and bootstraps the schema.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", "sqlite", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=10000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, stmt := range append(pragmas, sqliteSchema...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabase, firstWords(stmt), err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, run entity.ExtractionRun) error {
	row, err := toRow(run)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contract_extractions
			(id, source_path, content_hash, status, error_message, record, full_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.SourcePath, row.ContentHash, row.Status, row.ErrorMessage, string(row.Record), row.FullText,
		row.CreatedAt.Format(sqliteTime),
	)
	if err != nil {
		s.logger.Error("contract_extractions insert failed", "id", row.ID, "err", err)
		return fmt.Errorf("%w: save run: %v", common.ErrDatabase, err)
	}
	s.logger.Debug("contract_extractions saved", "id", row.ID, "status", row.Status, "path", row.SourcePath)
	return nil
}

const sqliteSelectRun = `
	SELECT id, source_path, content_hash, status, error_message, record, full_text, created_at
	FROM contract_extractions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(r scanner) (runRow, error) {
	var row runRow
	var errMsg sql.NullString
	var rec, created string
	if err := r.Scan(&row.ID, &row.SourcePath, &row.ContentHash, &row.Status, &errMsg, &rec, &row.FullText, &created); err != nil {
		return runRow{}, err
	}
	if errMsg.Valid {
		row.ErrorMessage = &errMsg.String
	}
	row.Record = []byte(rec)
	t, err := time.Parse(sqliteTime, created)
	if err != nil {
		return runRow{}, fmt.Errorf("parse created_at: %w", err)
	}
	row.CreatedAt = t
	return row, nil
}

func (s *SQLiteStore) GetByHash(ctx context.Context, hash []byte) (entity.ExtractionRun, error) {
	row, err := scanSQLiteRun(s.db.QueryRowContext(ctx, sqliteSelectRun+`
		WHERE content_hash = ?
		ORDER BY created_at DESC
		LIMIT 1`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ExtractionRun{}, common.ErrNotFound
	}
	if err != nil {
		return entity.ExtractionRun{}, fmt.Errorf("%w: get run: %v", common.ErrDatabase, err)
	}
	return row.toEntity()
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, sqliteSelectRun+`
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ExtractionRun
	for rows.Next() {
		row, err := scanSQLiteRun(rows)
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

func (s *SQLiteStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close sqlite database", "error", err)
	}
}

func firstWords(stmt string) string {
	f := strings.Fields(stmt)
	if len(f) > 3 {
		f = f[:3]
	}
	return strings.Join(f, " ")
}
