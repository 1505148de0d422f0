// Package types provides shared type definitions for the projspace registry.
//
// This package defines the domain types used across the manager and the record
// store: the Project record, its open Attributes mapping, and the error
// taxonomy.
//
// # Core Types
//
// Project represents a registry record bound to one on-disk directory:
//
//	rec := &types.Project{
//	    Name:       "carbon-budget-2026",
//	    Attributes: types.Attributes{"owner": "lab", "iterations": 12},
//	}
//
// # Errors
//
// Registry conditions are sentinel errors checked with errors.Is:
//
//	if errors.Is(err, types.ErrNotFound) { ... }
//
// Filesystem failures carry the path and OS error in a *DirectoryError whose
// kind is also matchable with errors.Is:
//
//	if errors.Is(err, types.ErrDirectoryCreate) {
//	    var de *types.DirectoryError
//	    errors.As(err, &de) // de.Path, de.Err
//	}
package types
