package history

import (
	"errors"
	"time"
)

// ErrNotFound covers both a missing record and a record whose artifact file
// has gone missing; the wrapped message tells the two apart in logs.
var ErrNotFound = errors.New("history entry not found")

// Record is one persisted generation. Immutable once written; the server
// never deletes records.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Prompt    string    `json:"prompt"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	HTMLPath  string    `json:"html_path"`
	Title     string    `json:"title,omitempty"`
}

// Store is the append-only history log. Append assigns ID, CreatedAt and
// HTMLPath, writes the HTML artifact, and persists the record; List returns
// records newest first; Get returns the artifact body for an id.
type Store interface {
	Append(rec Record, html string) (Record, error)
	List() ([]Record, error)
	Get(id string) (string, error)
}
