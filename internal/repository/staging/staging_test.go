package staging

import (
	"errors"
	"io"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()

	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()

	f, err := fs.Open(name)
	require.NoError(t, err)

	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	require.NoError(t, err)

	return string(data)
}

// TestRepository_ResetRemovesLeftovers checks that an interrupted build does not leak into the next one.
func TestRepository_ResetRemovesLeftovers(t *testing.T) {
	t.Parallel()

	builds := memfs.New()
	repo := NewRepository(builds)

	area, leftover, err := repo.Reset("ExampleTool")
	require.NoError(t, err)
	require.False(t, leftover)
	require.Equal(t, "ExampleTool", area.Name())

	require.NoError(t, area.WriteFile("stale.txt", []byte("old")))

	area, leftover, err = repo.Reset("ExampleTool")
	require.NoError(t, err)
	require.True(t, leftover)

	_, err = area.FS().Stat("stale.txt")
	require.Error(t, err)

	require.NoError(t, repo.Remove("ExampleTool"))

	exists, err := repo.Exists("ExampleTool")
	require.NoError(t, err)
	require.False(t, exists)
}

// TestArea_CopyFile verifies content copy, parent creation and overwrite reporting.
func TestArea_CopyFile(t *testing.T) {
	t.Parallel()

	src := memfs.New()
	writeFile(t, src, "res/tool.svg", "<svg/>")

	area, _, err := NewRepository(memfs.New()).Reset("ExampleTool")
	require.NoError(t, err)

	report, err := area.CopyFile(src, "res/tool.svg", "icons/tool.svg")
	require.NoError(t, err)
	require.Equal(t, []string{"icons/tool.svg"}, report.Copied)
	require.Empty(t, report.Overwritten)
	require.Equal(t, "<svg/>", readFile(t, area.FS(), "icons/tool.svg"))

	writeFile(t, src, "res/tool.svg", "<svg version=\"2\"/>")

	report, err = area.CopyFile(src, "res/tool.svg", "icons/tool.svg")
	require.NoError(t, err)
	require.Equal(t, []string{"icons/tool.svg"}, report.Overwritten)
	require.Equal(t, "<svg version=\"2\"/>", readFile(t, area.FS(), "icons/tool.svg"))

	_, err = area.CopyFile(src, "res/missing.svg", "icons/missing.svg")
	require.Error(t, err)
}

// TestArea_CopyTree verifies ordering and skipping in directory copies.
func TestArea_CopyTree(t *testing.T) {
	t.Parallel()

	src := memfs.New()
	writeFile(t, src, "python/example/b.py", "b")
	writeFile(t, src, "python/example/a.py", "a")
	writeFile(t, src, "python/example/a.pyc", "bytecode")
	writeFile(t, src, "python/example/sub/c.py", "c")
	writeFile(t, src, "python/example/__pycache__/a.cpython-311.pyc", "bytecode")

	area, _, err := NewRepository(memfs.New()).Reset("ExampleTool")
	require.NoError(t, err)

	skip := func(rel string, isDir bool) bool {
		return rel == "a.pyc" || (isDir && rel == "__pycache__")
	}

	report, err := area.CopyTree(src, "python/example", "scripts/python/example", skip)
	require.NoError(t, err)
	require.Equal(t, []string{
		"scripts/python/example/a.py",
		"scripts/python/example/b.py",
		"scripts/python/example/sub/c.py",
	}, report.Copied)
	require.ElementsMatch(t, []string{"__pycache__", "a.pyc"}, report.Skipped)
	require.Equal(t, "c", readFile(t, area.FS(), "scripts/python/example/sub/c.py"))

	_, err = area.FS().Stat("scripts/python/example/__pycache__")
	require.Error(t, err)

	// A second copy over the same target merges and reports overwrites.
	report, err = area.CopyTree(src, "python/example", "scripts/python/example", skip)
	require.NoError(t, err)
	require.Len(t, report.Overwritten, 3)
}

// TestRepository_Publish ensures the final file only appears after a successful write.
func TestRepository_Publish(t *testing.T) {
	t.Parallel()

	builds := memfs.New()
	repo := NewRepository(builds)

	err := repo.Publish("builds/ExampleTool.zip", func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, "first", readFile(t, builds, "builds/ExampleTool.zip"))

	err = repo.Publish("builds/ExampleTool.zip", func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, "second", readFile(t, builds, "builds/ExampleTool.zip"))

	errBoom := errors.New("boom")
	err = repo.Publish("builds/Broken.zip", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	exists, err := repo.Exists("builds/Broken.zip")
	require.NoError(t, err)
	require.False(t, exists)

	entries, err := builds.ReadDir("builds")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
