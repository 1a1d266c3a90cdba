package health

import (
	"encoding/json"
	"errors"
	"time"

	"healthtrack/internal/model"
)

var (
	// ErrNotFound is returned when an operation targets a record that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when inserting a record whose id is taken.
	ErrExists = errors.New("already exists")

	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")
)

// Mutator receives the stored body of a record (nil for an absent document)
// and returns the body to write back.
type Mutator func(current json.RawMessage) (json.RawMessage, error)

// Store persists ordered collections of JSON records and singleton
// documents. Every method runs in its own transaction; the read and write of
// Update and UpdateDocument are not interleaved with other writers.
type Store interface {
	// List returns every record of the collection in insertion order.
	List(c model.Collection) ([]json.RawMessage, error)

	// Get returns the record with the given id, or nil if there is none.
	Get(c model.Collection, id string) (json.RawMessage, error)

	// Insert appends a record. Returns ErrExists if the id is taken.
	Insert(c model.Collection, id string, body json.RawMessage) error

	// Update replaces a record with the result of fn, keeping its position.
	// Returns false if no record has the id.
	Update(c model.Collection, id string, fn Mutator) (bool, error)

	// Delete removes exactly the record with the id. Returns false if there
	// was none.
	Delete(c model.Collection, id string) (bool, error)

	// GetDocument returns a singleton document, or nil if it was never set.
	GetDocument(k model.DocumentKey) (json.RawMessage, error)

	// UpdateDocument replaces a document with the result of fn.
	UpdateDocument(k model.DocumentKey, fn Mutator) error

	// Export reads every collection and document in one transaction.
	Export() (*Snapshot, error)

	// Import replaces the collections and documents present in s, and only
	// those, in one transaction. A nil document body removes the document.
	// Bodies must already be in the current record format.
	Import(s *Snapshot) error

	// Operation history

	CreateOperation(name, parameters string) (*Operation, error)
	FinishOperation(id int64, status string) error
	ListOperations(limit int) ([]*Operation, error)
	MaxOperationID() (int64, error)

	Close() error
}

// Snapshot is the contents of a store. Collections and documents missing
// from the maps are left untouched by Import.
type Snapshot struct {
	Collections map[model.Collection][]json.RawMessage
	Documents   map[model.DocumentKey]json.RawMessage
}

// Operation is one recorded CLI command that changed the store.
type Operation struct {
	ID         int64
	Name       string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
}
