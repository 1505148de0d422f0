// Package store provides SQLite-based persistence for the project registry.
//
// The store manages a single table of project records keyed by normalized
// name, plus a single-row pointer to the currently active project. No business
// logic lives here beyond uniqueness and existence enforcement; the manager in
// pkg/projects owns lifecycle decisions.
//
// # Database Schema
//
// Tables:
//   - projects: one row per registered project (UUID id, unique name,
//     JSON-encoded attributes, timestamps)
//   - active_project: single-row pointer to the active project name
//   - schema_version: applied migration versions
//
// # Basic Usage
//
//	db, err := store.Open(filepath.Join(baseDir, "projects.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.Insert(ctx, &types.Project{Name: "foo"})
//
// # Build Modes
//
// The driver is selected at build time: modernc.org/sqlite by default (no
// CGO), github.com/mattn/go-sqlite3 with -tags cgo_sqlite.
package store
