package search

import (
	"context"

	internal "github.com/TFMV/seek/internal/search"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Re-export the types from the internal package
type (
	// Options configures a search.
	Options = internal.Options

	// MatchOptions controls how entry names are compared against the pattern.
	MatchOptions = internal.MatchOptions

	// Result is the outcome of one search.
	Result = internal.Result

	// SkippedDir is a directory that could not be listed.
	SkippedDir = internal.SkippedDir

	// Stats holds traversal statistics.
	Stats = internal.Stats

	// ProgressFn is called periodically with traversal statistics.
	ProgressFn = internal.ProgressFn

	// MatchSet is the concurrent set matches are collected into.
	MatchSet = internal.MatchSet

	// Lister lists the immediate entries of a directory.
	Lister = internal.Lister

	// Resolver is implemented by listers that can follow symbolic links.
	Resolver = internal.Resolver

	// Entry is one item produced while listing a directory.
	Entry = internal.Entry

	// Kind is the inferred type of a directory entry.
	Kind = internal.Kind

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel
)

// Re-export the constants
const (
	DefaultMaxInFlight      = internal.DefaultMaxInFlight
	DefaultProgressInterval = internal.DefaultProgressInterval

	KindUnknown = internal.KindUnknown
	KindFile    = internal.KindFile
	KindDir     = internal.KindDir
	KindSymlink = internal.KindSymlink

	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug
)

// ErrInvalidLimit is returned when a concurrency limit is out of range.
var ErrInvalidLimit = internal.ErrInvalidLimit

// Search returns every path under root whose final segment contains pattern.
func Search(root, pattern string) []string {
	return internal.Search(root, pattern)
}

// SearchLimit searches with at most limit directory listings in flight.
func SearchLimit(ctx context.Context, root, pattern string, limit int) (*Result, error) {
	return internal.SearchLimit(ctx, root, pattern, limit)
}

// SearchWithProgress searches with progress reporting.
func SearchWithProgress(ctx context.Context, root, pattern string, limit int, progressFn ProgressFn) (*Result, error) {
	return internal.SearchWithProgress(ctx, root, pattern, limit, progressFn)
}

// SearchWithOptions searches with full configuration.
func SearchWithOptions(ctx context.Context, root, pattern string, opts Options) (*Result, error) {
	return internal.SearchWithOptions(ctx, root, pattern, opts)
}

// SearchFs searches a tree on an afero filesystem.
func SearchFs(ctx context.Context, fs afero.Fs, root, pattern string, opts Options) (*Result, error) {
	opts.Lister = internal.NewFsLister(fs)
	return internal.SearchWithOptions(ctx, root, pattern, opts)
}

// NewMatchSet returns an empty MatchSet.
func NewMatchSet() *MatchSet {
	return internal.NewMatchSet()
}

// NewDirentLister returns the default host filesystem lister.
func NewDirentLister() Lister {
	return internal.NewDirentLister()
}

// NewFsLister returns a lister backed by an afero filesystem.
func NewFsLister(fs afero.Fs) Lister {
	return internal.NewFsLister(fs)
}

// NewOptions creates Options with default values.
func NewOptions() Options {
	return Options{
		MaxInFlight: DefaultMaxInFlight,
		LogLevel:    LogLevelInfo,
	}
}

// WithLogger returns a copy of opts logging to logger.
func WithLogger(opts Options, logger *zap.Logger) Options {
	opts.Logger = logger
	return opts
}
