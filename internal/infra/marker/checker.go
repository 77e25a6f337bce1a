// Package marker provides the file-marker completion checker used by the
// CLI. A producer signals that a work item is finished by dropping a marker
// file named after the source ref under <dataDir>/done. The check is a pure
// read; this core never creates or removes markers.
package marker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loopgate/loopgate/internal/domain"
)

// Ensure Checker implements domain.CompletionChecker.
var _ domain.CompletionChecker = (*Checker)(nil)

// Checker reports completion from marker-file existence.
type Checker struct {
	dir string
}

// New creates a Checker over the given marker directory.
func New(dir string) *Checker {
	return &Checker{dir: dir}
}

// Done reports whether a marker exists for the task's source ref.
func (c *Checker) Done(_ context.Context, task *domain.Task) (bool, error) {
	_, err := os.Stat(c.Path(task.SourceRef))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat completion marker: %w", err)
}

// Path returns the marker path for a source ref. Refs are sanitized so an
// opaque ref cannot escape the marker directory.
func (c *Checker) Path(sourceRef string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, sourceRef)
	// Empty or dot-only refs would resolve to the marker directory itself
	// or its parent, which os.Stat reports as existing.
	if strings.Trim(safe, ".") == "" {
		safe = "_" + safe
	}
	return filepath.Join(c.dir, safe)
}
