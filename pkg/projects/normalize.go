package projects

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/dshills/projspace/pkg/types"
)

// Normalizer turns an arbitrary user-supplied string into a filesystem- and
// identifier-safe name. It must be pure and deterministic; the manager calls
// it at every public boundary so names are always normalized before touching
// the store or the filesystem.
type Normalizer func(string) string

// DefaultNormalizer slugifies names: transliteration to ASCII, lowercasing,
// whitespace and punctuation collapsed to hyphens.
func DefaultNormalizer(raw string) string {
	return slug.Make(raw)
}

// validNameSegment rejects names that cannot serve as a single path segment.
func validNameSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return filepath.Clean(name) == name
}

// CleanName returns the normalized form of raw. It fails with
// types.ErrInvalidName when normalization produces an empty or unusable name.
// CleanName is idempotent: applying it to its own output yields the same name.
func (m *Manager) CleanName(raw string) (string, error) {
	clean := m.normalize(raw)
	if !validNameSegment(clean) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidName, raw)
	}
	return clean, nil
}
