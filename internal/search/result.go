package seek

import (
	"fmt"

	"go.uber.org/multierr"
)

// SkippedDir is a directory whose listing failed and which therefore
// contributed no entries.
type SkippedDir struct {
	Path string
	Err  error
}

// Result is the outcome of one search.
type Result struct {
	ID      string       // Run identifier, also attached to log lines
	Root    string       // Root as given by the caller
	Pattern string       // Pattern as given by the caller
	Matches []string     // Matched full paths
	Skipped []SkippedDir // Directories that could not be listed
	Panic   error        // First panic recovered from a unit, if any
	Stats   Stats        // Final traversal statistics
}

// Complete reports whether every directory under the root was listed.
func (r *Result) Complete() bool {
	return len(r.Skipped) == 0 && r.Panic == nil
}

// Err folds every listing failure and a recovered panic into one error.
// It returns nil for a complete result.
func (r *Result) Err() error {
	var err error
	for _, s := range r.Skipped {
		err = multierr.Append(err, fmt.Errorf("skipped %q: %w", s.Path, s.Err))
	}
	return multierr.Append(err, r.Panic)
}
