// Package seek provides concurrent, recursive search of a directory tree for
// entries whose name contains a substring.
//
// Every directory discovered under the root is expanded by its own goroutine.
// Matches from all goroutines are merged into one MatchSet, and the caller
// is released only once every goroutine, including the ones spawned
// transitively, has finished.
package seek

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// DefaultMaxInFlight is the default number of directory listings allowed to
// run at the same time.
const DefaultMaxInFlight int = 64

// ErrInvalidLimit is returned when a concurrency limit is out of range.
var ErrInvalidLimit = errors.New("seek: concurrency limit must be greater than zero")

// Options configures a search.
type Options struct {
	MatchOptions

	// MaxInFlight caps concurrent directory listings. Zero means
	// DefaultMaxInFlight. Ignored when Unbounded is set.
	MaxInFlight int

	// Unbounded lets every unit list its directory as soon as it is
	// scheduled. A tree with N directories may then have N listings in flight.
	Unbounded bool

	// FollowSymlinks descends into symbolic links that resolve to a
	// directory. Requires a Lister that implements Resolver.
	FollowSymlinks bool

	// Unsorted keeps Result.Matches in discovery order.
	Unsorted bool

	// Lister lists directories. Defaults to a DirentLister.
	Lister Lister

	Progress         ProgressFn
	ProgressInterval time.Duration

	Logger   *zap.Logger // Used as is when set
	LogLevel LogLevel    // Level of the logger built when Logger is nil
}

// Search returns every path under root whose final segment contains pattern,
// using the default concurrency limit. Directories that cannot be listed
// contribute nothing; a root that cannot be listed yields no matches.
func Search(root, pattern string) []string {
	res, err := SearchLimit(context.Background(), root, pattern, DefaultMaxInFlight)
	if err != nil || res == nil {
		return nil
	}
	return res.Matches
}

// SearchLimit searches with at most limit directory listings in flight.
func SearchLimit(ctx context.Context, root, pattern string, limit int) (*Result, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	return SearchWithOptions(ctx, root, pattern, Options{MaxInFlight: limit})
}

// SearchWithProgress is SearchLimit with periodic progress reporting.
func SearchWithProgress(ctx context.Context, root, pattern string, limit int, progressFn ProgressFn) (*Result, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	return SearchWithOptions(ctx, root, pattern, Options{MaxInFlight: limit, Progress: progressFn})
}

// SearchWithOptions runs a search with full configuration.
//
// The returned error is non-nil only for invalid options or when ctx ends
// before the search completes; in the latter case the partial result is
// returned as well. Listing failures are reported in Result.Skipped.
func SearchWithOptions(ctx context.Context, root, pattern string, opts Options) (*Result, error) {
	if opts.MaxInFlight < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, opts.MaxInFlight)
	}
	if opts.MaxInFlight == 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.Lister == nil {
		opts.Lister = NewDirentLister()
	}

	logger := opts.Logger
	if logger == nil {
		logger = createLogger(opts.LogLevel)
		defer logger.Sync()
	}
	id := uuid.NewString()
	logger = logger.With(zap.String("search_id", id))

	s := &searcher{
		ctx:     ctx,
		lister:  opts.Lister,
		matcher: newMatcher(pattern, opts.MatchOptions),
		matches: NewMatchSet(),
		logger:  logger,
		stats:   &counters{start: time.Now()},
	}
	if !opts.Unbounded {
		s.slots = make(chan struct{}, opts.MaxInFlight)
	}

	var ancestors []string
	if opts.FollowSymlinks {
		resolver, ok := opts.Lister.(Resolver)
		if !ok {
			logger.Warn("lister cannot resolve symlinks, not following them")
		} else if resolved, isDir, err := resolver.Resolve(root); err == nil && isDir {
			s.resolver = resolver
			ancestors = []string{resolved}
		}
	}

	logger.Debug("starting search",
		zap.String("root", root),
		zap.String("pattern", pattern),
		zap.Int("max_in_flight", opts.MaxInFlight),
		zap.Bool("unbounded", opts.Unbounded),
		zap.Bool("follow_symlinks", s.resolver != nil),
	)

	stop := startProgress(s.stats, opts.Progress, opts.ProgressInterval)
	s.spawn(root, ancestors)
	recovered := s.wg.WaitAndRecover()
	stop()

	res := &Result{
		ID:      id,
		Root:    root,
		Pattern: pattern,
		Matches: s.matches.Snapshot(),
		Skipped: s.skipped,
		Stats:   s.stats.snapshot(),
	}
	if !opts.Unsorted {
		sort.Strings(res.Matches)
	}
	sort.Slice(res.Skipped, func(i, j int) bool {
		return res.Skipped[i].Path < res.Skipped[j].Path
	})
	if recovered != nil {
		res.Panic = recovered.AsError()
		logger.Warn("search unit panicked, its subtree is missing from the result", zap.Error(res.Panic))
	}

	logger.Debug("search finished",
		zap.Int("matches", len(res.Matches)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int64("dirs", res.Stats.DirsListed),
		zap.Duration("elapsed", res.Stats.ElapsedTime),
	)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// searcher is the state shared by every unit of one search.
type searcher struct {
	ctx      context.Context
	lister   Lister
	resolver Resolver // nil unless symlinks are followed
	matcher  matcher
	matches  *MatchSet
	logger   *zap.Logger
	stats    *counters
	slots    chan struct{} // nil when unbounded

	wg conc.WaitGroup

	skippedMu sync.Mutex
	skipped   []SkippedDir
}

// spawn schedules a unit for dir. The unit is counted before spawn returns,
// so a parent never finishes ahead of the bookkeeping for its children.
func (s *searcher) spawn(dir string, ancestors []string) {
	s.wg.Go(func() {
		s.walk(dir, ancestors)
	})
}

// walk expands one directory. It never waits for the units it spawns.
func (s *searcher) walk(dir string, ancestors []string) {
	s.stats.unitStarted()
	defer s.stats.unitDone()

	if s.ctx.Err() != nil {
		return
	}

	entries, err := s.list(dir)
	if err != nil {
		if s.ctx.Err() == nil {
			s.skip(dir, err)
		}
		return
	}
	s.stats.dirsListed.Add(1)

	for _, e := range entries {
		s.stats.entriesSeen.Add(1)
		if s.matcher.Match(e.Name) && s.matches.Record(e.Path) {
			s.stats.matches.Add(1)
		}

		switch e.Kind {
		case KindDir:
			var chain []string
			if len(ancestors) > 0 {
				chain = extend(ancestors, filepath.Join(ancestors[len(ancestors)-1], e.Name))
			}
			s.spawn(e.Path, chain)
		case KindSymlink:
			s.followLink(e.Path, ancestors)
		}
	}
}

// list lists dir while holding an in-flight slot.
func (s *searcher) list(dir string) ([]Entry, error) {
	if s.slots != nil {
		select {
		case s.slots <- struct{}{}:
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		}
		defer func() { <-s.slots }()
	}

	s.stats.listingStarted()
	defer s.stats.listingDone()
	return s.lister.List(dir)
}

// followLink spawns a unit for a symlink that resolves to a directory which is
// not the current directory or one of its ancestors.
func (s *searcher) followLink(path string, ancestors []string) {
	if s.resolver == nil {
		return
	}
	resolved, isDir, err := s.resolver.Resolve(path)
	if err != nil {
		s.logger.Debug("cannot resolve symlink", zap.String("path", path), zap.Error(err))
		return
	}
	if !isDir {
		return
	}
	for _, a := range ancestors {
		if a == resolved {
			s.logger.Debug("symlink cycle", zap.String("path", path), zap.String("target", resolved))
			return
		}
	}
	s.spawn(path, extend(ancestors, resolved))
}

func (s *searcher) skip(dir string, err error) {
	s.stats.skippedDirs.Add(1)
	s.skippedMu.Lock()
	s.skipped = append(s.skipped, SkippedDir{Path: dir, Err: err})
	s.skippedMu.Unlock()
	s.logger.Debug("skipping directory", zap.String("path", dir), zap.Error(err))
}

// extend returns a new slice holding chain followed by resolved.
func extend(chain []string, resolved string) []string {
	out := make([]string, len(chain)+1)
	copy(out, chain)
	out[len(chain)] = resolved
	return out
}
