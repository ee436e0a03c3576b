package seek

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/spf13/afero"
)

// Kind is the inferred type of a directory entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Entry is one item produced while listing a directory.
type Entry struct {
	Path string // Full path (directory joined with Name)
	Name string // Final path segment
	Kind Kind
}

// Lister lists the immediate entries of a directory.
// Implementations must be safe for concurrent use.
type Lister interface {
	List(dir string) ([]Entry, error)
}

// Resolver is implemented by listers that can follow symbolic links.
// Resolve returns the absolute, link-free path of path and whether it is a directory.
type Resolver interface {
	Resolve(path string) (resolved string, isDir bool, err error)
}

// scratchSize is the size of the buffers handed to godirwalk.
const scratchSize = 64 * 1024

// DirentLister lists directories on the host filesystem with godirwalk.
type DirentLister struct {
	scratch sync.Pool
}

// NewDirentLister returns a DirentLister with pooled scratch buffers.
func NewDirentLister() *DirentLister {
	return &DirentLister{
		scratch: sync.Pool{
			New: func() interface{} {
				b := make([]byte, scratchSize)
				return &b
			},
		},
	}
}

// List implements Lister.
func (l *DirentLister) List(dir string) ([]Entry, error) {
	buf := l.scratch.Get().(*[]byte)
	defer l.scratch.Put(buf)

	dirents, err := godirwalk.ReadDirents(dir, *buf)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		kind := KindUnknown
		switch {
		case de.IsDir():
			kind = KindDir
		case de.IsSymlink():
			kind = KindSymlink
		case de.IsRegular():
			kind = KindFile
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, de.Name()),
			Name: de.Name(),
			Kind: kind,
		})
	}
	return entries, nil
}

// Resolve implements Resolver.
func (l *DirentLister) Resolve(path string) (string, bool, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false, err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", false, err
	}
	return resolved, info.IsDir(), nil
}

// FsLister lists directories through an afero filesystem.
type FsLister struct {
	fs afero.Fs
}

// NewFsLister returns a Lister backed by fs.
func NewFsLister(fs afero.Fs) *FsLister {
	return &FsLister{fs: fs}
}

// List implements Lister.
func (l *FsLister) List(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Path: filepath.Join(dir, info.Name()),
			Name: info.Name(),
			Kind: kindOf(info.Mode()),
		})
	}
	return entries, nil
}

func kindOf(mode os.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsRegular():
		return KindFile
	default:
		return KindUnknown
	}
}
