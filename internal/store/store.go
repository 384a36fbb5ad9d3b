// Package store persists ingestion runs, published book metadata and file
// rejections in Postgres. Store implements ingest.Publisher.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/JonMunkholm/bookingest/internal/config"
	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/ingest"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("record not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens a pool sized from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Store is the Postgres-backed publisher and read model.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// BeginIngestion records a new run.
func (s *Store) BeginIngestion(ctx context.Context, run ingest.Run) error {
	const query = `
	INSERT INTO ingestions (id, file_name, username, status, started_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, run.ID, run.FileName, run.Username, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert ingestion: %w", err)
	}
	return nil
}

// PublishBook stores a book's metadata and ONIX document, replacing any
// earlier version of the same ISBN.
func (s *Store) PublishBook(ctx context.Context, runID uuid.UUID, msg ingest.BookMetadata, onixDoc []byte) error {
	const query = `
	INSERT INTO books (isbn, ingestion_id, title, metadata, onix, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (isbn) DO UPDATE SET
		ingestion_id = EXCLUDED.ingestion_id,
		title        = EXCLUDED.title,
		metadata     = EXCLUDED.metadata,
		onix         = EXCLUDED.onix,
		updated_at   = now()
	`
	_, err := s.pool.Exec(ctx, query, msg.ISBN, runID, msg.Title, msg, string(onixDoc))
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", msg.ISBN, err)
	}
	return nil
}

// PublishRejection stores a file rejection.
func (s *Store) PublishRejection(ctx context.Context, runID uuid.UUID, msg ingest.FileRejected) error {
	const query = `
	INSERT INTO rejections (ingestion_id, reasons, source)
	VALUES ($1, $2, $3)
	`
	_, err := s.pool.Exec(ctx, query, runID, msg.RejectionReasons, msg.Source)
	if err != nil {
		return fmt.Errorf("insert rejection: %w", err)
	}
	return nil
}

// FinishIngestion records the final state of a run.
func (s *Store) FinishIngestion(ctx context.Context, run ingest.Run) error {
	const query = `
	UPDATE ingestions
	SET status = $2, books = $3, issues = $4, error = $5, finished_at = $6
	WHERE id = $1
	`
	errText := pgtype.Text{String: run.Error, Valid: run.Error != ""}
	finished := pgtype.Timestamptz{Valid: run.FinishedAt != nil}
	if run.FinishedAt != nil {
		finished.Time = *run.FinishedAt
	}

	tag, err := s.pool.Exec(ctx, query, run.ID, run.Status, run.Books, run.Issues, errText, finished)
	if err != nil {
		return fmt.Errorf("update ingestion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IngestionDetail is a run together with the reasons it was rejected.
type IngestionDetail struct {
	ingest.Run
	RejectionReasons []core.Issue `json:"rejection_reasons"`
}

// GetIngestion loads a run and its rejection reasons.
func (s *Store) GetIngestion(ctx context.Context, id uuid.UUID) (IngestionDetail, error) {
	const query = `
	SELECT id, file_name, username, status, books, issues, error, started_at, finished_at
	FROM ingestions
	WHERE id = $1
	`
	var (
		d        IngestionDetail
		errText  pgtype.Text
		finished pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.FileName,
		&d.Username,
		&d.Status,
		&d.Books,
		&d.Issues,
		&errText,
		&d.StartedAt,
		&finished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IngestionDetail{}, ErrNotFound
		}
		return IngestionDetail{}, fmt.Errorf("get ingestion: %w", err)
	}
	d.Error = errText.String
	if finished.Valid {
		t := finished.Time
		d.FinishedAt = &t
	}

	reasons, err := s.rejectionReasons(ctx, id)
	if err != nil {
		return IngestionDetail{}, err
	}
	d.RejectionReasons = reasons
	return d, nil
}

func (s *Store) rejectionReasons(ctx context.Context, id uuid.UUID) ([]core.Issue, error) {
	const query = `SELECT reasons FROM rejections WHERE ingestion_id = $1 ORDER BY id`
	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list rejections: %w", err)
	}
	defer rows.Close()

	reasons := []core.Issue{}
	for rows.Next() {
		var batch []core.Issue
		if err := rows.Scan(&batch); err != nil {
			return nil, fmt.Errorf("scan rejection: %w", err)
		}
		reasons = append(reasons, batch...)
	}
	return reasons, rows.Err()
}

// StoredBook is a published book as persisted.
type StoredBook struct {
	Metadata    ingest.BookMetadata `json:"metadata"`
	IngestionID uuid.UUID           `json:"ingestion_id"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// GetBook loads the latest metadata published for isbn.
func (s *Store) GetBook(ctx context.Context, isbn string) (StoredBook, error) {
	const query = `SELECT metadata, ingestion_id, updated_at FROM books WHERE isbn = $1`
	var b StoredBook
	err := s.pool.QueryRow(ctx, query, isbn).Scan(&b.Metadata, &b.IngestionID, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredBook{}, ErrNotFound
		}
		return StoredBook{}, fmt.Errorf("get book %s: %w", isbn, err)
	}
	return b, nil
}

// GetOnix returns the ONIX document stored for isbn.
func (s *Store) GetOnix(ctx context.Context, isbn string) ([]byte, error) {
	const query = `SELECT onix FROM books WHERE isbn = $1`
	var doc string
	if err := s.pool.QueryRow(ctx, query, isbn).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get onix %s: %w", isbn, err)
	}
	return []byte(doc), nil
}

// RecentIngestions lists the latest runs, newest first.
func (s *Store) RecentIngestions(ctx context.Context, limit int) ([]ingest.Run, error) {
	const query = `
	SELECT id, file_name, username, status, books, issues, error, started_at, finished_at
	FROM ingestions
	ORDER BY started_at DESC
	LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	defer rows.Close()

	runs := []ingest.Run{}
	for rows.Next() {
		var (
			r        ingest.Run
			errText  pgtype.Text
			finished pgtype.Timestamptz
		)
		if err := rows.Scan(&r.ID, &r.FileName, &r.Username, &r.Status, &r.Books, &r.Issues,
			&errText, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan ingestion: %w", err)
		}
		r.Error = errText.String
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ ingest.Publisher = (*Store)(nil)
