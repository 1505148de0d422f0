package projects

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/projspace/internal/store"
	"github.com/dshills/projspace/pkg/types"
)

// Manager orchestrates the project lifecycle: it normalizes names, keeps the
// record store and the filesystem in lockstep, tracks the single active
// project, and dispatches lifecycle callbacks.
//
// A manager is single-owner state: mutating operations must not be invoked
// concurrently. A second concurrent mutation fails fast with
// types.ErrConcurrentOp rather than interleaving directory and record writes.
type Manager struct {
	baseDir   string
	dbName    string
	subDirs   []string
	normalize Normalizer
	store     Store
	ownsStore bool
	log       *zap.Logger

	onCreate   Callback
	onActivate Callback
	onDelete   Callback
	onCopy     CopyCallback

	op opLock
}

// New builds a Manager from cfg. The base directory is resolved (explicit
// value, or the path resolver's OS default) and created, and the registry
// database is opened at base/<database name> unless cfg.Store injects a
// different record store.
func New(cfg Config) (*Manager, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		resolver := cfg.Resolver
		if resolver == nil {
			resolver = DefaultPathResolver
		}
		var err error
		baseDir, err = resolver(cfg.AppName, cfg.AppAuthor)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base directory: %w", err)
		}
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &types.DirectoryError{Kind: types.ErrDirectoryCreate, Path: baseDir, Err: err}
	}

	dbName := cfg.DatabaseName
	if dbName == "" {
		dbName = DefaultDatabaseName
	}
	normalize := cfg.Normalizer
	if normalize == nil {
		normalize = DefaultNormalizer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st := cfg.Store
	ownsStore := false
	if st == nil {
		var err error
		st, err = store.Open(filepath.Join(baseDir, dbName))
		if err != nil {
			return nil, err
		}
		ownsStore = true
	}

	m := &Manager{
		baseDir:    baseDir,
		dbName:     dbName,
		subDirs:    cfg.SubDirs,
		normalize:  normalize,
		store:      st,
		ownsStore:  ownsStore,
		log:        logger,
		onCreate:   cfg.OnCreate,
		onActivate: cfg.OnActivate,
		onDelete:   cfg.OnDelete,
		onCopy:     cfg.OnCopy,
	}
	m.log.Debug("opened project registry",
		zap.String("base_dir", baseDir),
		zap.String("database", dbName))
	return m, nil
}

// Close releases the record store. Injected stores (Config.Store) are left
// open for their owner to close.
func (m *Manager) Close() error {
	if !m.ownsStore {
		return nil
	}
	return m.store.Close()
}

// BaseDir returns the manager's base directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Dir returns the directory bound to a normalized project name. The binding
// is deterministic: base/<name>. It does not consult the registry or the
// filesystem.
func (m *Manager) Dir(name string) string {
	return filepath.Join(m.baseDir, name)
}

// Create registers a new project: the name is normalized, the project
// directory (plus any configured skeleton subdirectories) is created, and the
// record is inserted. Directory and record creation are atomic as a pair — a
// failure on either side leaves no trace of the other. The OnCreate hook runs
// after both succeed.
//
// With activate set, the new project is activated in the same call; an
// activation failure leaves the project created but inactive.
func (m *Manager) Create(ctx context.Context, name string, attributes types.Attributes, activate bool) (*types.Project, error) {
	if !m.op.tryAcquire() {
		return nil, types.ErrConcurrentOp
	}
	defer m.op.release()

	clean, err := m.CleanName(name)
	if err != nil {
		return nil, err
	}

	exists, err := m.store.Exists(ctx, clean)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", types.ErrProjectExists, clean)
	}

	dir := m.Dir(clean)
	if err := m.makeProjectDir(dir); err != nil {
		return nil, err
	}

	project := &types.Project{Name: clean, Attributes: attributes.Clone()}
	if err := m.store.Insert(ctx, project); err != nil {
		// Roll the directory back so a failed create leaves no trace.
		_ = os.RemoveAll(dir)
		return nil, err
	}

	m.log.Info("created project",
		zap.String("project", clean),
		zap.String("dir", dir))

	if m.onCreate != nil {
		if err := m.onCreate(m, clean, project.Attributes, dir); err != nil {
			return nil, err
		}
	}

	if activate {
		if err := m.activate(ctx, clean); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Activate marks the named project as the single active project. It fails
// with types.ErrNotFound for unregistered names and with
// types.ErrDirectoryMissing when the registry and filesystem have drifted
// (record present, directory gone). Re-activating the active project is
// allowed and re-invokes the OnActivate hook.
func (m *Manager) Activate(ctx context.Context, name string) error {
	if !m.op.tryAcquire() {
		return types.ErrConcurrentOp
	}
	defer m.op.release()

	clean, err := m.CleanName(name)
	if err != nil {
		return err
	}
	return m.activate(ctx, clean)
}

// activate is the lock-held implementation shared by Activate, Create, and
// Copy.
func (m *Manager) activate(ctx context.Context, clean string) error {
	project, err := m.store.Get(ctx, clean)
	if err != nil {
		return err
	}

	dir := m.Dir(clean)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", types.ErrDirectoryMissing, dir)
	}

	if err := m.store.SetActive(ctx, clean); err != nil {
		return err
	}

	m.log.Info("activated project", zap.String("project", clean))

	if m.onActivate != nil {
		return m.onActivate(m, clean, project.Attributes, dir)
	}
	return nil
}

// Copy duplicates an existing project under a new name: the whole source
// directory tree is copied and a new record is inserted with a copy of the
// source's attributes (independent afterward). On any filesystem failure the
// partially copied target is removed before the error is returned. With
// activate set, the target project is activated after the copy.
func (m *Manager) Copy(ctx context.Context, source, target string, activate bool) (*types.Project, error) {
	if !m.op.tryAcquire() {
		return nil, types.ErrConcurrentOp
	}
	defer m.op.release()

	srcClean, err := m.CleanName(source)
	if err != nil {
		return nil, err
	}
	tgtClean, err := m.CleanName(target)
	if err != nil {
		return nil, err
	}

	src, err := m.store.Get(ctx, srcClean)
	if err != nil {
		return nil, err
	}
	exists, err := m.store.Exists(ctx, tgtClean)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", types.ErrProjectExists, tgtClean)
	}

	srcDir := m.Dir(srcClean)
	tgtDir := m.Dir(tgtClean)
	if err := copyTree(ctx, srcDir, tgtDir); err != nil {
		// No partial copies left behind.
		_ = os.RemoveAll(tgtDir)
		return nil, &types.DirectoryError{Kind: types.ErrDirectoryCopy, Path: tgtDir, Err: err}
	}

	project := &types.Project{Name: tgtClean, Attributes: src.Attributes.Clone()}
	if err := m.store.Insert(ctx, project); err != nil {
		_ = os.RemoveAll(tgtDir)
		return nil, err
	}

	m.log.Info("copied project",
		zap.String("source", srcClean),
		zap.String("target", tgtClean),
		zap.String("dir", tgtDir))

	if m.onCopy != nil {
		if err := m.onCopy(m, srcClean, tgtClean, tgtDir); err != nil {
			return nil, err
		}
	}

	if activate {
		if err := m.activate(ctx, tgtClean); err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Delete removes a project from the registry. Deleting the active project
// clears the active pointer first; no replacement is elected. The record
// removal is authoritative: with deleteDir set, a directory-removal failure
// is reported but does not resurrect the record — an orphaned directory
// beats a ghost record the API cannot recover. The OnDelete hook runs only
// after both sides succeed.
func (m *Manager) Delete(ctx context.Context, name string, deleteDir bool) error {
	if !m.op.tryAcquire() {
		return types.ErrConcurrentOp
	}
	defer m.op.release()

	clean, err := m.CleanName(name)
	if err != nil {
		return err
	}

	project, err := m.store.Get(ctx, clean)
	if err != nil {
		return err
	}

	active, err := m.store.GetActive(ctx)
	if err != nil {
		return err
	}
	if active == clean {
		if err := m.store.ClearActive(ctx); err != nil {
			return err
		}
	}

	if err := m.store.Delete(ctx, clean); err != nil {
		return err
	}

	dir := m.Dir(clean)
	if deleteDir {
		if err := os.RemoveAll(dir); err != nil {
			return &types.DirectoryError{Kind: types.ErrDirectoryDelete, Path: dir, Err: err}
		}
	}

	m.log.Info("deleted project",
		zap.String("project", clean),
		zap.Bool("dir_removed", deleteDir))

	if m.onDelete != nil {
		return m.onDelete(m, clean, project.Attributes, dir)
	}
	return nil
}

// RequestDirectory returns the directory bound to a project, creating it if
// the record exists but the directory has gone missing. It fails with
// types.ErrNotFound when no record exists for the name.
func (m *Manager) RequestDirectory(ctx context.Context, name string) (string, error) {
	if !m.op.tryAcquire() {
		return "", types.ErrConcurrentOp
	}
	defer m.op.release()

	clean, err := m.CleanName(name)
	if err != nil {
		return "", err
	}

	exists, err := m.store.Exists(ctx, clean)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", types.ErrNotFound, clean)
	}

	dir := m.Dir(clean)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &types.DirectoryError{Kind: types.ErrDirectoryCreate, Path: dir, Err: err}
	}
	return dir, nil
}

// UpdateAttributes replaces a project's attributes mapping. Records mutate
// only through manager operations, never through direct store writes.
func (m *Manager) UpdateAttributes(ctx context.Context, name string, attributes types.Attributes) error {
	if !m.op.tryAcquire() {
		return types.ErrConcurrentOp
	}
	defer m.op.release()

	clean, err := m.CleanName(name)
	if err != nil {
		return err
	}
	return m.store.UpdateAttributes(ctx, clean, attributes.Clone())
}

// Get returns the record for a project name (normalized first).
func (m *Manager) Get(ctx context.Context, name string) (*types.Project, error) {
	clean, err := m.CleanName(name)
	if err != nil {
		return nil, err
	}
	return m.store.Get(ctx, clean)
}

// All returns a lazy, restartable sequence of all project records sorted by
// name. Each range re-reads the registry.
func (m *Manager) All(ctx context.Context) iter.Seq2[*types.Project, error] {
	return m.store.All(ctx)
}

// Contains reports whether a project with the given (raw) name is
// registered. Names that normalize to nothing usable are simply not present.
func (m *Manager) Contains(ctx context.Context, name string) (bool, error) {
	clean, err := m.CleanName(name)
	if err != nil {
		return false, nil
	}
	return m.store.Exists(ctx, clean)
}

// Count returns the number of registered projects.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// Active returns the currently active project record, or nil when no project
// is active.
func (m *Manager) Active(ctx context.Context) (*types.Project, error) {
	name, err := m.store.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	return m.store.Get(ctx, name)
}

// PurgeOrphanDirectories removes base-directory subdirectories that have no
// registry record and returns how many were deleted. Files under the base
// directory (the registry database among them) are never touched.
func (m *Manager) PurgeOrphanDirectories(ctx context.Context) (int, error) {
	if !m.op.tryAcquire() {
		return 0, types.ErrConcurrentOp
	}
	defer m.op.release()

	registered := make(map[string]struct{})
	for project, err := range m.store.All(ctx) {
		if err != nil {
			return 0, err
		}
		registered[project.Name] = struct{}{}
	}

	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read base directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := registered[entry.Name()]; ok {
			continue
		}
		dir := filepath.Join(m.baseDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			return removed, &types.DirectoryError{Kind: types.ErrDirectoryDelete, Path: dir, Err: err}
		}
		m.log.Info("purged orphan directory", zap.String("dir", dir))
		removed++
	}
	return removed, nil
}

// makeProjectDir creates the project directory and its skeleton
// subdirectories, removing everything it made if any step fails.
func (m *Manager) makeProjectDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.DirectoryError{Kind: types.ErrDirectoryCreate, Path: dir, Err: err}
	}
	for _, sub := range m.subDirs {
		subDir := filepath.Join(dir, sub)
		if err := os.MkdirAll(subDir, 0o755); err != nil {
			_ = os.RemoveAll(dir)
			return &types.DirectoryError{Kind: types.ErrDirectoryCreate, Path: subDir, Err: err}
		}
	}
	return nil
}
