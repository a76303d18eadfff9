package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestDiscoverLayout(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"include/Widget.h":   "class Widget {};",
		"include/Gadget.hpp": "class Gadget {};",
		"src/Widget.cpp":     "#include \"Widget.h\"",
		"src/Gadget.cc":      "#include \"Gadget.hpp\"",
		"src/main.cpp":       "int main() {}",
		"build/gen.cpp":      "// generated",
		".git/hooks/x.cpp":   "// not code",
		"README.md":          "docs",
	})

	a := NewLocalSourceFSAdapter()

	layout, err := a.DiscoverLayout(context.Background(), m.Path(root))
	require.NoError(t, err)

	assert.Equal(t, m.Path(root), layout.Root)

	require.Len(t, layout.Headers, 2)
	assert.Equal(t, m.Path(filepath.Join(root, "include/Gadget.hpp")), layout.Headers[0])
	assert.Equal(t, m.Path(filepath.Join(root, "include/Widget.h")), layout.Headers[1])

	// main.cpp would collide with gtest's own main; build/ and .git/ are
	// never scanned.
	require.Len(t, layout.Sources, 2)
	assert.Equal(t, m.Path(filepath.Join(root, "src/Gadget.cc")), layout.Sources[0])
	assert.Equal(t, m.Path(filepath.Join(root, "src/Widget.cpp")), layout.Sources[1])

	require.Len(t, layout.IncludeDirs, 1)
	assert.Equal(t, m.Path(filepath.Join(root, "include")), layout.IncludeDirs[0])
}

func TestDiscoverLayout_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/Widget.cpp":      "",
		"src/Widget_test.cpp": "",
		"vendor/dep.cpp":      "",
	})

	a := NewLocalSourceFSAdapter()

	layout, err := a.DiscoverLayout(context.Background(), m.Path(root), `_test\.cpp$`, `vendor/`)
	require.NoError(t, err)

	require.Len(t, layout.Sources, 1)
	assert.Equal(t, m.Path(filepath.Join(root, "src/Widget.cpp")), layout.Sources[0])
}

func TestDiscoverLayout_InvalidExcludePattern(t *testing.T) {
	a := NewLocalSourceFSAdapter()

	_, err := a.DiscoverLayout(context.Background(), m.Path(t.TempDir()), `([`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestDiscoverLayout_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.cpp": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalSourceFSAdapter().DiscoverLayout(ctx, m.Path(root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteFile_CreatesParents(t *testing.T) {
	root := t.TempDir()
	a := NewLocalSourceFSAdapter()

	path := a.JoinPath(root, "pass_1", "Widget_push", "Widget_push.cpp")
	require.NoError(t, a.WriteFile(context.Background(), path, []byte("// body"), 0o644))

	content, err := a.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "// body", string(content))
}

func TestResetDir(t *testing.T) {
	root := t.TempDir()
	a := NewLocalSourceFSAdapter()

	stale := filepath.Join(root, "out", "stale.gcda")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	require.NoError(t, a.ResetDir(context.Background(), m.Path(filepath.Join(root, "out"))))

	entries, err := os.ReadDir(filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
