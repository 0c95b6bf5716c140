// Package summarystore persists produced summaries so they can be listed
// and downloaded again by their owner.
package summarystore

import (
	"errors"
	"time"
)

// PastedTextLabel is the source label of summaries made from pasted text.
const PastedTextLabel = "pasted_text"

// ErrNotFound is returned when no record matches an id and owner.
var ErrNotFound = errors.New("summary not found")

// Record is one stored summary.
type Record struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	SourceLabel    string    `json:"source_label"`
	SummaryText    string    `json:"summary_text"`
	SourceLanguage string    `json:"source_language,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store defines the interface for storing and retrieving summaries.
type Store interface {
	// Initialize opens the store at dbPath.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Save stores a record, filling in ID and CreatedAt when empty.
	Save(rec *Record) error

	// List returns up to limit records of an owner, newest first.
	// A non-positive limit returns all of them.
	List(ownerID string, limit int) ([]Record, error)

	// Get returns one record of an owner.
	Get(id, ownerID string) (Record, error)

	// Delete removes one record of an owner.
	Delete(id, ownerID string) error
}
