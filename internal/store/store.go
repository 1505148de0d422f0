package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/projspace/pkg/types"
)

// SQLite is the SQLite-backed record store for the project registry.
type SQLite struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open opens (creating if necessary) the registry database at dbPath.
func Open(dbPath string) (*SQLite, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure. Both
// the modernc and mattn drivers include this phrase in the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// Insert stores a new project record. The record's ID and timestamps are
// assigned on success. Returns types.ErrProjectExists if the name is taken.
func (s *SQLite) Insert(ctx context.Context, project *types.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	attrs, err := marshalAttributes(project.Attributes)
	if err != nil {
		return err
	}

	id := project.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO projects (id, name, attributes, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, project.Name, attrs, now, now); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", types.ErrProjectExists, project.Name)
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}

	project.ID = id
	project.CreatedAt = now
	project.ModifiedAt = now
	return nil
}

// Get returns the record with the given name, or types.ErrNotFound.
func (s *SQLite) Get(ctx context.Context, name string) (*types.Project, error) {
	query := `
		SELECT id, name, attributes, created_at, modified_at
		FROM projects
		WHERE name = ?
	`
	project, err := scanProject(s.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the record with the given name, or returns types.ErrNotFound.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	return nil
}

// UpdateAttributes replaces the attributes mapping for an existing record and
// bumps its modification time. Returns types.ErrNotFound if absent.
func (s *SQLite) UpdateAttributes(ctx context.Context, name string, attributes types.Attributes) error {
	attrs, err := marshalAttributes(attributes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE projects SET attributes = ?, modified_at = ? WHERE name = ?`,
		attrs, now, name)
	if err != nil {
		return fmt.Errorf("failed to update attributes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	return nil
}

// All returns a lazy, restartable sequence of all records sorted by name.
// Each range over the sequence runs a fresh query.
func (s *SQLite) All(ctx context.Context) iter.Seq2[*types.Project, error] {
	return func(yield func(*types.Project, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, attributes, created_at, modified_at
			FROM projects
			ORDER BY name
		`)
		if err != nil {
			yield(nil, fmt.Errorf("failed to list projects: %w", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			project, err := scanProject(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(project, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to iterate projects: %w", err))
		}
	}
}

// Count returns the number of registered projects.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// Exists reports whether a record with the given name is registered.
func (s *SQLite) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE name = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check project existence: %w", err)
	}
	return true, nil
}

// SetActive marks the named record as the single active project.
func (s *SQLite) SetActive(ctx context.Context, name string) error {
	query := `
		INSERT INTO active_project (id, name) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	if _, err := s.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to set active project: %w", err)
	}
	return nil
}

// ClearActive removes the active pointer, leaving no project active.
func (s *SQLite) ClearActive(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM active_project WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear active project: %w", err)
	}
	return nil
}

// GetActive returns the name of the active project, or "" if no project has
// ever been activated (or the pointer was cleared).
func (s *SQLite) GetActive(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM active_project WHERE id = 1`).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active project: %w", err)
	}
	return name, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*types.Project, error) {
	var (
		project types.Project
		attrs   string
	)
	err := row.Scan(&project.ID, &project.Name, &attrs, &project.CreatedAt, &project.ModifiedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	if err := json.Unmarshal([]byte(attrs), &project.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attributes for %s: %w", project.Name, err)
	}
	return &project, nil
}

func marshalAttributes(attributes types.Attributes) (string, error) {
	if attributes == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(attributes)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(raw), nil
}
