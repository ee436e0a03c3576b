// Package search finds filesystem entries whose name contains a substring.
//
// Each directory under the root is expanded concurrently, matches are merged
// into one set, and every function returns only after all directories have
// been examined.
//
//	// Basic usage
//	matches := search.Search("/path/to/tree", "Go")
//
//	// Bounded, cancellable, with diagnostics
//	res, err := search.SearchLimit(ctx, "/path/to/tree", "Go", 8)
//	if err != nil {
//		return err
//	}
//	for _, s := range res.Skipped {
//		log.Printf("could not list %s: %v", s.Path, s.Err)
//	}
//
//	// Case-insensitive, following symlinks
//	opts := search.NewOptions()
//	opts.IgnoreCase = true
//	opts.FollowSymlinks = true
//	res, err = search.SearchWithOptions(ctx, "/path/to/tree", "readme", opts)
//
//	// In-memory or sandboxed trees
//	res, err = search.SearchFs(ctx, afero.NewMemMapFs(), "/", "Go", search.NewOptions())
//
// Directories that cannot be listed never abort a search; they are reported
// in Result.Skipped.
package search
