package seek

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// makeTree creates each file (and its parent directories) under root.
// Names ending in "/" create directories only.
func makeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if f[len(f)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))
	}
}

// makeMemTree is makeTree for an in-memory filesystem.
func makeMemTree(t *testing.T, root string, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(root, 0o755))
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if f[len(f)-1] == '/' {
			require.NoError(t, fs.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("test"), 0o644))
	}
	return fs
}

// paths joins each relative name onto root.
func paths(root string, rel ...string) []string {
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(root, filepath.FromSlash(r)))
	}
	return out
}

func testOptions(t *testing.T) Options {
	return Options{Logger: zaptest.NewLogger(t)}
}

// hookLister runs before(dir) ahead of every listing of the wrapped Lister.
type hookLister struct {
	Lister
	before func(dir string) error
}

func (l hookLister) List(dir string) ([]Entry, error) {
	if err := l.before(dir); err != nil {
		return nil, err
	}
	return l.Lister.List(dir)
}

// concurrencyLister records the highest number of overlapping List calls.
type concurrencyLister struct {
	Lister
	hold    time.Duration
	current atomic.Int64
	peak    atomic.Int64
}

func (l *concurrencyLister) List(dir string) ([]Entry, error) {
	raisePeak(&l.peak, l.current.Add(1))
	defer l.current.Add(-1)
	time.Sleep(l.hold)
	return l.Lister.List(dir)
}

// countingLister counts List calls per directory.
type countingLister struct {
	Lister
	mu    sync.Mutex
	calls map[string]int
}

func (l *countingLister) List(dir string) ([]Entry, error) {
	l.mu.Lock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[dir]++
	l.mu.Unlock()
	return l.Lister.List(dir)
}
