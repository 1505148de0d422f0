package projects

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// DefaultDatabaseName is the registry database file created under the base
// directory when Config.DatabaseName is empty.
const DefaultDatabaseName = "projects.db"

// PathResolver computes the default base directory from application identity
// when no explicit base directory is configured.
type PathResolver func(appName, appAuthor string) (string, error)

// DefaultPathResolver places the base directory under the OS data home
// (XDG on Linux, Application Support on macOS, AppData on Windows). The
// author segment is only used on Windows, matching platform conventions.
func DefaultPathResolver(appName, appAuthor string) (string, error) {
	if appName == "" {
		appName = "projspace"
	}
	if runtime.GOOS == "windows" && appAuthor != "" {
		return filepath.Join(xdg.DataHome, appAuthor, appName), nil
	}
	return filepath.Join(xdg.DataHome, appName), nil
}

// Callback is a lifecycle hook invoked after create, activate, and delete
// operations with the triggering manager, the normalized project name, the
// record's attributes, and the project directory path. A non-nil error
// propagates unmodified to the caller of the triggering operation.
type Callback func(m *Manager, name string, attributes map[string]any, dir string) error

// CopyCallback is the lifecycle hook for copy operations; dir is the target
// project's directory.
type CopyCallback func(m *Manager, source, target string, dir string) error

// Config is the construction-time configuration for a Manager. It is read
// once by New and never mutated afterward for the lifetime of the manager.
type Config struct {
	// BaseDir is the root under which the registry database and one
	// subdirectory per project live. When empty, Resolver (or
	// DefaultPathResolver) computes an OS-conventional default from
	// AppName/AppAuthor.
	BaseDir string `env:"PROJSPACE_DIR"`

	// DatabaseName is the registry database filename under BaseDir.
	// Defaults to DefaultDatabaseName.
	DatabaseName string `env:"PROJSPACE_DB"`

	// AppName and AppAuthor feed the path resolver only.
	AppName   string `env:"PROJSPACE_APP_NAME"`
	AppAuthor string `env:"PROJSPACE_APP_AUTHOR"`

	// SubDirs are skeleton subdirectories created inside every new project
	// directory (for example "backups" or "intermediate").
	SubDirs []string `env:"PROJSPACE_SUBDIRS"`

	// Normalizer overrides DefaultNormalizer.
	Normalizer Normalizer

	// Resolver overrides DefaultPathResolver.
	Resolver PathResolver

	// Store overrides the default SQLite store. An injected store is not
	// closed by Manager.Close.
	Store Store

	// Logger receives structured operation logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Lifecycle hooks. Nil hooks are skipped.
	OnCreate   Callback
	OnActivate Callback
	OnDelete   Callback
	OnCopy     CopyCallback
}

// ConfigFromEnv builds a Config from PROJSPACE_* environment variables.
// Unset variables leave the zero values in place, so the result composes with
// the same defaulting New applies to a hand-built Config.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return cfg, nil
}
