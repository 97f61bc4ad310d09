package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tool-packager/internal/config"
	"github.com/oshokin/tool-packager/internal/service/packager"
	"github.com/oshokin/tool-packager/internal/service/selector"
)

// writeProjects creates a projects root with two buildable projects and returns it.
func writeProjects(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]string{
		"ExampleTool/build_infos.txt": "$NAME:ExampleTool\n" +
			"$VERSION:python/example/__init__.py\n" +
			"otls:otls\n" +
			"scripts/python/example:python/example\n",
		"ExampleTool/otls/example.hda":              "hda",
		"ExampleTool/python/example/__init__.py":    "__version__ = \"0.4.0\"\n",
		"ExampleTool/python/example/core.pyc":       "bytecode",
		"OtherTool/build_infos.txt":                 "$NAME:OtherTool\nREADME.md:README.md\n",
		"OtherTool/README.md":                       "# other",
		".git/HEAD":                                 "ref: refs/heads/main",
		config.DefaultBuildsDir + "/builds/old.zip": "",
	}

	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	return root
}

// TestPackager_BuildsNamedProject runs the whole pipeline for a project picked by name.
func TestPackager_BuildsNamedProject(t *testing.T) {
	t.Parallel()

	root := writeProjects(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := packager.Run(ctx, &packager.Options{
		ConfigPath:   filepath.Join(root, "missing.yaml"),
		ProjectsRoot: root,
		Selector:     selector.Fixed{Ref: "ExampleTool"},
	})
	require.NoError(t, err)

	buildsRoot := filepath.Join(root, config.DefaultBuildsDir)
	require.Equal(t, filepath.Join(buildsRoot, "builds", "ExampleTool_v0_4_0.zip"), result.ArchivePath)

	_, err = os.Stat(result.ArchivePath)
	require.NoError(t, err)

	// Staging directory is removed once the archive exists.
	_, err = os.Stat(filepath.Join(buildsRoot, "ExampleTool"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Contains(t, result.Skipped, "python/example/core.pyc")
}

// TestPackager_ConsoleSelection picks a project by ID through the console prompt.
func TestPackager_ConsoleSelection(t *testing.T) {
	t.Parallel()

	root := writeProjects(t)

	var out strings.Builder

	result, err := packager.Run(context.Background(), &packager.Options{
		ConfigPath:   filepath.Join(root, "missing.yaml"),
		ProjectsRoot: root,
		Selector:     selector.NewConsole(strings.NewReader("1\n"), &out),
	})
	require.NoError(t, err)
	require.Equal(t, "OtherTool", result.BuildName)
	require.Contains(t, out.String(), "[1] OtherTool")
}

// TestPackager_InvalidSelection stops before anything is written.
func TestPackager_InvalidSelection(t *testing.T) {
	t.Parallel()

	root := writeProjects(t)

	_, err := packager.Run(context.Background(), &packager.Options{
		ConfigPath:   filepath.Join(root, "missing.yaml"),
		ProjectsRoot: root,
		Selector:     selector.NewConsole(strings.NewReader("2\n"), &strings.Builder{}),
	})
	require.ErrorIs(t, err, selector.ErrInvalidSelection)

	entries, err := os.ReadDir(filepath.Join(root, config.DefaultBuildsDir, "builds"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestPackager_ListUsesConfigFile reads the projects root from a saved settings file.
func TestPackager_ListUsesConfigFile(t *testing.T) {
	t.Parallel()

	root := writeProjects(t)
	configPath := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	cfg := config.Default()
	cfg.ProjectsRoot = root
	require.NoError(t, config.Save(configPath, cfg))

	projects, err := packager.List(context.Background(), &packager.Options{ConfigPath: configPath})
	require.NoError(t, err)
	require.Equal(t, []string{"ExampleTool", "OtherTool"}, projects)
}
