// Package adapter contains infrastructure adapters for the covforge CLI.
package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

var headerExtensions = map[string]bool{
	".h": true, ".hpp": true, ".hh": true, ".hxx": true,
}

var sourceExtensions = map[string]bool{
	".cpp": true, ".cc": true, ".cxx": true,
}

var skipDirNames = map[string]bool{
	".git": true, "build": true, "cmake-build-debug": true, "node_modules": true,
}

// ProjectLayout describes the discovered shape of a C++ project: the header
// and implementation files plus the include directories the toolchain needs.
type ProjectLayout struct {
	Root        m.Path
	Headers     []m.Path
	Sources     []m.Path
	IncludeDirs []m.Path
}

// SourceFSAdapter abstracts filesystem operations the engine relies on when
// scanning user projects and writing generated artifacts. It hides direct
// `os` access so the domain logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// DiscoverLayout walks root and classifies C++ headers and sources,
	// returning them in deterministic (sorted) order. Files matching any
	// of the exclude regex patterns are dropped.
	DiscoverLayout(ctx context.Context, root m.Path, exclude ...string) (ProjectLayout, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions,
	// creating parent directories as needed.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// ResetDir removes path and recreates it empty. Coverage counters
	// accumulate across runs sharing output files, so every pass starts
	// from a clean output root.
	ResetDir(ctx context.Context, path m.Path) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter implementation.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// DiscoverLayout walks root and classifies C++ headers and sources.
func (a *LocalSourceFSAdapter) DiscoverLayout(ctx context.Context, root m.Path, exclude ...string) (ProjectLayout, error) {
	layout := ProjectLayout{Root: root}
	includeSeen := map[string]bool{}

	excludeRes := make([]*regexp.Regexp, 0, len(exclude))

	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ProjectLayout{}, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludeRes = append(excludeRes, re)
	}

	err := filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if info.IsDir() {
			name := filepath.Base(path)
			if skipDirNames[name] || (strings.HasPrefix(name, ".") && path != string(root)) {
				return filepath.SkipDir
			}

			return nil
		}

		for _, re := range excludeRes {
			if re.MatchString(path) {
				return nil
			}
		}

		ext := filepath.Ext(path)

		switch {
		case headerExtensions[ext]:
			layout.Headers = append(layout.Headers, m.Path(path))

			dir := filepath.Dir(path)
			if !includeSeen[dir] {
				includeSeen[dir] = true
				layout.IncludeDirs = append(layout.IncludeDirs, m.Path(dir))
			}
		case sourceExtensions[ext]:
			// main.cpp carries the project's own entry point and would
			// collide with the test runtime's main.
			base := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ext))
			if base == "main" {
				return nil
			}

			layout.Sources = append(layout.Sources, m.Path(path))
		}

		return nil
	})
	if err != nil {
		return ProjectLayout{}, err
	}

	sortPaths(layout.Headers)
	sortPaths(layout.Sources)
	sortPaths(layout.IncludeDirs)

	return layout, nil
}

func sortPaths(paths []m.Path) {
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(_ context.Context, path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file, creating parent directories.
func (a *LocalSourceFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// ResetDir removes path and recreates it empty.
func (a *LocalSourceFSAdapter) ResetDir(_ context.Context, path m.Path) error {
	if err := os.RemoveAll(string(path)); err != nil {
		return err
	}

	return os.MkdirAll(string(path), 0o750)
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
