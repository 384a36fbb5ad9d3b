package ingest

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bookingest/internal/core"
)

// Realms used on published book classifications.
const (
	RealmISBN           = "isbn"
	RealmSourceUsername = "source_username"
)

// Run statuses recorded with the publisher.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// System identifies the service that produced a message.
type System struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FileSource describes where a spreadsheet came from. System is filled in by
// the service before any message is published.
type FileSource struct {
	URI         string    `json:"uri,omitempty"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	Username    string    `json:"username"`
	Role        string    `json:"role,omitempty"`
	DeliveredAt time.Time `json:"deliveredAt"`
	System      *System   `json:"system,omitempty"`
}

// BookMetadata is published once per valid row.
type BookMetadata struct {
	core.Book
	Classification []core.Classification `json:"classification"`
	Source         FileSource            `json:"source"`
}

// FileRejected is published once per file when any row or the header failed.
type FileRejected struct {
	RejectionReasons []core.Issue `json:"rejectionReasons"`
	Source           FileSource   `json:"source"`
}

// Run is the record of one ingestion.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	FileName   string     `json:"file_name"`
	Username   string     `json:"username"`
	Status     string     `json:"status"`
	Books      int        `json:"books"`
	Issues     int        `json:"issues"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newBookMetadata(book core.Book, src FileSource) BookMetadata {
	return BookMetadata{
		Book: book,
		Classification: []core.Classification{
			{Realm: RealmISBN, ID: book.ISBN},
			{Realm: RealmSourceUsername, ID: src.Username},
		},
		Source: src,
	}
}
