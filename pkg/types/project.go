package types

import (
	"maps"
	"time"
)

// Attributes is the open metadata mapping attached to a project. Keys are
// application-defined; values may be strings, numbers, booleans, or nested
// maps/slices, anything the JSON codec round-trips.
type Attributes map[string]any

// Clone returns a shallow copy of the mapping. Mutating the clone's top-level
// keys never affects the original. A nil receiver clones to an empty, non-nil
// mapping so callers can write into it.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	return maps.Clone(a)
}

// Project is a single registry record binding a normalized name to one
// directory under the manager's base directory.
type Project struct {
	// ID is a surrogate identifier (UUID) assigned on insert.
	ID string

	// Name is the normalized project name, unique across the registry and
	// used as the directory name on disk.
	Name string

	// Attributes holds application-defined metadata.
	Attributes Attributes

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Validate checks that the record is storable.
func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	return nil
}
