package projects

import (
	"context"
	"iter"

	"github.com/dshills/projspace/pkg/types"
)

// Store is the persistence contract the manager runs on. The default
// implementation is the SQLite store in internal/store; any durable
// key-value-like store satisfying this interface can be injected through
// Config.Store instead.
//
// Stores enforce name uniqueness and existence only; lifecycle decisions
// (directories, callbacks, the active pointer's meaning) belong to the
// manager.
type Store interface {
	// Insert stores a new record, failing with types.ErrProjectExists if the
	// name is already present.
	Insert(ctx context.Context, project *types.Project) error

	// Get returns the record with the given name or types.ErrNotFound.
	Get(ctx context.Context, name string) (*types.Project, error)

	// Delete removes the record with the given name or returns
	// types.ErrNotFound.
	Delete(ctx context.Context, name string) error

	// UpdateAttributes replaces the attributes mapping for an existing
	// record, failing with types.ErrNotFound if absent.
	UpdateAttributes(ctx context.Context, name string, attributes types.Attributes) error

	// All returns a lazy, restartable sequence of all records sorted by name.
	All(ctx context.Context) iter.Seq2[*types.Project, error]

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Exists reports whether a record with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)

	// SetActive persists which single record is currently active.
	SetActive(ctx context.Context, name string) error

	// ClearActive removes the active pointer.
	ClearActive(ctx context.Context) error

	// GetActive returns the active record's name, or "" if no project has
	// ever been activated.
	GetActive(ctx context.Context) (string, error)

	Close() error
}
