// Package projects manages a local registry of named projects, each bound to
// a dedicated subdirectory on disk plus arbitrary key-value metadata.
//
// The registry is a persisted table of project records (name, attributes,
// timestamps) kept in lockstep with one directory per project under a single
// base directory. It is the low-level building block for applications that
// need isolated per-project workspaces.
//
// # Basic Usage
//
//	mgr, err := projects.New(projects.Config{
//	    BaseDir: "/var/lib/myapp",
//	    OnCreate: func(m *projects.Manager, name string, attrs map[string]any, dir string) error {
//	        return os.WriteFile(filepath.Join(dir, "README"), []byte(name), 0o644)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	rec, err := mgr.Create(ctx, "Tëst Ünïcode", nil, true) // name becomes "test-unicode"
//
// # Names
//
// Every operation normalizes its name argument before touching the store or
// the filesystem, so user-facing names may be arbitrary strings; on disk and
// in the registry only slugified forms exist. "Foo Bar" and "foo-bar" refer
// to the same project.
//
// # The Active Project
//
// At most one project is active at a time. The pointer is persisted next to
// the records, so a manager re-instantiated in a later process remembers the
// last active project. Deleting the active project leaves no project active.
//
// # Failure Model
//
// Create and Copy treat the directory and the record as a pair: if either
// side fails, the other is rolled back. Delete treats the record as
// authoritative: a failed directory removal is reported but does not
// resurrect the record. Drift (record without directory) is surfaced by
// Activate as types.ErrDirectoryMissing and can be repaired with
// RequestDirectory.
package projects
