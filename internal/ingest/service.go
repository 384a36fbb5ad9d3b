// Package ingest turns uploaded spreadsheets into published book metadata.
//
// A Service validates every row with core.Validator, publishes one
// BookMetadata per valid row and one FileRejected per file with problems,
// and optionally writes an ONIX file per book. Concurrency is bounded by a
// Limiter.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/logging"
	"github.com/JonMunkholm/bookingest/internal/onix"
	"github.com/JonMunkholm/bookingest/internal/sheet"
)

// ErrFileTooLarge is returned when an upload exceeds Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// Event types attached to the final log line of every ingestion.
const (
	EventComplete = "ingestion.spreadsheet.complete"
	EventFailure  = "ingestion.spreadsheet.failure"
)

// Publisher receives everything an ingestion produces.
type Publisher interface {
	BeginIngestion(ctx context.Context, run Run) error
	PublishBook(ctx context.Context, runID uuid.UUID, msg BookMetadata, onixDoc []byte) error
	PublishRejection(ctx context.Context, runID uuid.UUID, msg FileRejected) error
	FinishIngestion(ctx context.Context, run Run) error
}

// Options tunes a Service.
type Options struct {
	System      System
	OnixDir     string
	MaxFileSize int64
	Timeout     time.Duration
}

// Result summarises a finished ingestion.
type Result struct {
	Run
	ISBNs     []string     `json:"isbns"`
	Rejection []core.Issue `json:"rejection_reasons"`
	OnixPath  string       `json:"onix_path,omitempty"`
}

// Preview is the outcome of a dry run.
type Preview struct {
	FileName string       `json:"file_name"`
	Books    []core.Book  `json:"books"`
	Issues   []core.Issue `json:"issues"`
}

// Service runs ingestions.
type Service struct {
	validator *core.Validator
	publisher Publisher
	limiter   *Limiter
	opts      Options
	now       func() time.Time
}

// NewService wires a Service. A nil limiter uses the defaults.
func NewService(v *core.Validator, p Publisher, l *Limiter, opts Options) *Service {
	if l == nil {
		l = NewLimiter(0, 0)
	}
	return &Service{validator: v, publisher: p, limiter: l, opts: opts, now: time.Now}
}

// Limiter exposes the service's concurrency limiter.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Ingest validates the spreadsheet in r and publishes its books. Data
// problems end up in the result's issues and a FileRejected message; only
// infrastructure problems are returned as errors.
func (s *Service) Ingest(ctx context.Context, src FileSource, r io.Reader) (*Result, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	if src.DeliveredAt.IsZero() {
		src.DeliveredAt = s.now().UTC()
	}
	src.System = &s.opts.System

	res := &Result{Run: Run{
		ID:        uuid.New(),
		FileName:  src.FileName,
		Username:  src.Username,
		Status:    StatusRunning,
		StartedAt: s.now().UTC(),
	}}
	log := logging.WithFields(ctx, "ingestion_id", res.ID, "file", src.FileName, "username", src.Username)
	log.Info("ingestion started")

	sh, err := s.open(src.FileName, src.ContentType, r)
	if err != nil {
		log.Warn("ingestion failed", "event_type", EventFailure, "error", err)
		return nil, err
	}

	if err := s.publisher.BeginIngestion(ctx, res.Run); err != nil {
		log.Error("ingestion failed", "event_type", EventFailure, "error", err)
		return nil, fmt.Errorf("begin ingestion: %w", err)
	}

	runErr := s.run(ctx, log, sh, src, res)
	s.finish(ctx, log, res, runErr)
	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, log *slog.Logger, sh *sheet.Sheet, src FileSource, res *Result) error {
	out, err := newOnixWriter(s.opts.OnixDir, src)
	if err != nil {
		return err
	}
	defer out.discard()

	note := fmt.Sprintf("Generated from `%s`", src.FileName)
	issues, err := s.validator.ProcessRows(sh, func(book core.Book) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := onix.Marshal(book, note)
		if err != nil {
			return err
		}
		if err := s.publisher.PublishBook(ctx, res.ID, newBookMetadata(book, src), doc); err != nil {
			return fmt.Errorf("publish %s: %w", book.ISBN, err)
		}
		if err := out.write(book.ISBN, doc); err != nil {
			return err
		}
		res.ISBNs = append(res.ISBNs, book.ISBN)
		log.Debug("book published", "isbn", book.ISBN)
		return nil
	})
	res.Books = len(res.ISBNs)
	res.Rejection = issues
	res.Issues = len(issues)
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		if err := s.publisher.PublishRejection(ctx, res.ID, FileRejected{RejectionReasons: issues, Source: src}); err != nil {
			return fmt.Errorf("publish rejection: %w", err)
		}
	}

	res.OnixPath, err = out.commit()
	return err
}

// finish records the final state of the run. It uses a context detached from
// cancellation so aborted runs are still recorded.
func (s *Service) finish(ctx context.Context, log *slog.Logger, res *Result, runErr error) {
	finished := s.now().UTC()
	res.FinishedAt = &finished

	switch {
	case runErr != nil:
		res.Status = StatusFailed
		res.Error = runErr.Error()
	case res.Issues > 0:
		res.Status = StatusRejected
	default:
		res.Status = StatusComplete
	}

	if err := s.publisher.FinishIngestion(context.WithoutCancel(ctx), res.Run); err != nil {
		log.Error("failed to record ingestion result", "error", err)
	}

	attrs := []any{"status", res.Status, "books", res.Books, "issues", res.Issues,
		"duration", finished.Sub(res.StartedAt)}
	switch res.Status {
	case StatusComplete:
		log.Info("ingestion completed", append(attrs, "event_type", EventComplete)...)
	case StatusRejected:
		log.Warn("ingestion completed with issues", append(attrs, "event_type", EventFailure)...)
	default:
		log.Error("ingestion failed", append(attrs, "event_type", EventFailure, "error", runErr)...)
	}
}

// Validate runs the row checks without publishing anything.
func (s *Service) Validate(ctx context.Context, fileName, contentType string, r io.Reader) (*Preview, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	sh, err := s.open(fileName, contentType, r)
	if err != nil {
		return nil, err
	}

	p := &Preview{FileName: fileName, Books: []core.Book{}}
	issues, err := s.validator.ProcessRows(sh, func(book core.Book) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Books = append(p.Books, book)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Issues = issues
	if p.Issues == nil {
		p.Issues = []core.Issue{}
	}
	return p, nil
}

func (s *Service) open(fileName, contentType string, r io.Reader) (*sheet.Sheet, error) {
	if s.opts.MaxFileSize > 0 {
		data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if int64(len(data)) > s.opts.MaxFileSize {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.opts.MaxFileSize)
		}
		r = bytes.NewReader(data)
	}
	return sheet.Open(fileName, contentType, r)
}

// onixWriter stages ONIX files in a temporary directory and moves it to
// <dir>/generated_<file> once the whole sheet has been processed.
type onixWriter struct {
	tmp      string
	final    string
	modified time.Time
}

func newOnixWriter(dir string, src FileSource) (*onixWriter, error) {
	if dir == "" {
		return &onixWriter{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create onix dir: %w", err)
	}
	tmp, err := os.MkdirTemp(dir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("create onix staging dir: %w", err)
	}
	return &onixWriter{
		tmp:      tmp,
		final:    filepath.Join(dir, "generated_"+filepath.Base(src.FileName)),
		modified: src.DeliveredAt,
	}, nil
}

func (w *onixWriter) write(isbn string, doc []byte) error {
	if w.tmp == "" {
		return nil
	}
	path := filepath.Join(w.tmp, isbn+".xml")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write onix: %w", err)
	}
	if !w.modified.IsZero() {
		if err := os.Chtimes(path, w.modified, w.modified); err != nil {
			return fmt.Errorf("write onix: %w", err)
		}
	}
	return nil
}

func (w *onixWriter) commit() (string, error) {
	if w.tmp == "" {
		return "", nil
	}
	if err := os.RemoveAll(w.final); err != nil {
		return "", fmt.Errorf("replace onix output: %w", err)
	}
	if err := os.Rename(w.tmp, w.final); err != nil {
		return "", fmt.Errorf("move onix output: %w", err)
	}
	if err := os.Chmod(w.final, 0o775); err != nil {
		return "", fmt.Errorf("move onix output: %w", err)
	}
	w.tmp = ""
	return w.final, nil
}

// discard removes the staging directory if commit never ran.
func (w *onixWriter) discard() {
	if w.tmp != "" {
		os.RemoveAll(w.tmp)
	}
}
