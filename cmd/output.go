package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	seek "github.com/TFMV/seek/internal/search"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// outputOptions controls how a result is printed.
type outputOptions struct {
	format    string
	relative  bool
	highlight *color.Color // nil disables highlighting
	w         io.Writer
}

func newOutputOptions(format, colorMode string, relative bool, w io.Writer) (outputOptions, error) {
	opts := outputOptions{format: format, relative: relative, w: w}

	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return opts, fmt.Errorf("invalid format: %s (expected text, json or yaml)", format)
	}

	var useColor bool
	switch colorMode {
	case "auto":
		useColor = isTerminal(w)
	case "always":
		useColor = true
	case "never":
	default:
		return opts, fmt.Errorf("invalid color mode: %s (expected auto, always or never)", colorMode)
	}
	if useColor && format == formatText {
		opts.highlight = color.New(color.FgRed, color.Bold)
		opts.highlight.EnableColor()
	}
	return opts, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// report is the structured form of a result.
type report struct {
	ID      string          `json:"id" yaml:"id"`
	Root    string          `json:"root" yaml:"root"`
	Pattern string          `json:"pattern" yaml:"pattern"`
	Matches []string        `json:"matches" yaml:"matches"`
	Skipped []skippedReport `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Panic   string          `json:"panic,omitempty" yaml:"panic,omitempty"`
	Stats   seek.Stats      `json:"stats" yaml:"stats"`
}

type skippedReport struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

func newReport(res *seek.Result, opts outputOptions) report {
	r := report{
		ID:      res.ID,
		Root:    res.Root,
		Pattern: res.Pattern,
		Matches: make([]string, 0, len(res.Matches)),
		Stats:   res.Stats,
	}
	for _, m := range res.Matches {
		r.Matches = append(r.Matches, displayPath(res.Root, m, opts.relative))
	}
	for _, s := range res.Skipped {
		r.Skipped = append(r.Skipped, skippedReport{Path: s.Path, Error: s.Err.Error()})
	}
	if res.Panic != nil {
		r.Panic = res.Panic.Error()
	}
	return r
}

// writeResult prints res in the configured format.
func writeResult(res *seek.Result, opts outputOptions) error {
	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(opts.w)
		enc.SetIndent("", "  ")
		return enc.Encode(newReport(res, opts))
	case formatYAML:
		enc := yaml.NewEncoder(opts.w)
		enc.SetIndent(2)
		if err := enc.Encode(newReport(res, opts)); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, m := range res.Matches {
			line := highlight(displayPath(res.Root, m, opts.relative), res.Pattern, opts.highlight)
			if _, err := fmt.Fprintln(opts.w, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeSkipped prints a summary of directories that could not be read.
func writeSkipped(w io.Writer, res *seek.Result) {
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "seek: skipped %s: %v\n", s.Path, s.Err)
	}
	if res.Panic != nil {
		fmt.Fprintf(w, "seek: a worker crashed, results are partial: %v\n", res.Panic)
	}
}

func displayPath(root, path string, relative bool) string {
	if !relative {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// highlight colours the first occurrence of pattern in the final path segment.
func highlight(path, pattern string, c *color.Color) string {
	if c == nil || pattern == "" {
		return path
	}
	dir, base := filepath.Split(path)
	i := strings.Index(base, pattern)
	if i < 0 {
		return path
	}
	return dir + base[:i] + c.Sprint(base[i:i+len(pattern)]) + base[i+len(pattern):]
}
