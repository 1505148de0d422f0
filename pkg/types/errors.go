package types

import (
	"errors"
	"fmt"
)

// Registry errors
var (
	// ErrNotFound is returned when an operation references a project name
	// absent from the registry.
	ErrNotFound = errors.New("project not found")
	// ErrProjectExists is returned when a create or copy target name is
	// already registered.
	ErrProjectExists = errors.New("project already exists")
	// ErrInvalidName is returned when normalization produces an empty or
	// otherwise unusable name.
	ErrInvalidName = errors.New("invalid project name")
	// ErrDirectoryMissing signals drift: a record exists but its bound
	// directory does not.
	ErrDirectoryMissing = errors.New("project directory missing")
	// ErrConcurrentOp is returned when a mutating operation starts while
	// another is still running on the same manager.
	ErrConcurrentOp = errors.New("concurrent operation in progress")
)

// Directory operation kinds, matched via errors.Is on a *DirectoryError.
var (
	ErrDirectoryCreate = errors.New("directory create failed")
	ErrDirectoryCopy   = errors.New("directory copy failed")
	ErrDirectoryDelete = errors.New("directory delete failed")
)

// DirectoryError reports a failed filesystem operation with the affected path
// and the underlying OS error.
type DirectoryError struct {
	Kind error  // one of ErrDirectoryCreate, ErrDirectoryCopy, ErrDirectoryDelete
	Path string // directory the operation was acting on
	Err  error  // underlying OS error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the underlying OS error to errors.Is/As chains.
func (e *DirectoryError) Unwrap() error { return e.Err }

// Is reports whether target is this error's kind.
func (e *DirectoryError) Is(target error) bool { return target == e.Kind }
