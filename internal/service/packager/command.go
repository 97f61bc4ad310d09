package packager

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/tool-packager/internal/config"
	"github.com/oshokin/tool-packager/internal/logger"
	"github.com/oshokin/tool-packager/internal/repository/workspace"
	"github.com/oshokin/tool-packager/internal/service/selector"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file (defaults to tool-packager.yaml).
	ConfigPath string
	// ProjectsRoot overrides the configured projects root when set.
	ProjectsRoot string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Selector picks the project; nil means a console prompt on stdin/stdout.
	Selector selector.Selector
	// Progress receives a progress bar while staging; nil disables it.
	Progress io.Writer
}

// Run selects a project and builds its archive.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "tool-packager")

	cfg, ws, err := prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Projects root", "path", ws.Root())

	projects, err := ws.Projects()
	if err != nil {
		return nil, err
	}

	sel := opts.Selector
	if sel == nil {
		sel = selector.NewConsole(os.Stdin, os.Stdout)
	}

	index, err := sel.Select(ctx, projects)
	if err != nil {
		return nil, err
	}

	project := projects[index]
	ctx = logger.WithKV(ctx, "project", project)

	logger.InfoKV(ctx, "Build infos", "path", ws.ManifestPath(project))

	pkg, err := NewFromConfig(ws.BuildsRoot(), cfg, WithProgress(opts.Progress))
	if err != nil {
		return nil, fmt.Errorf("initialize packager: %w", err)
	}

	result, err := pkg.Build(ctx, ws.ProjectDir(project), ws.ManifestPath(project))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", project, err)
	}

	logger.InfoKV(ctx, "Build created successfully",
		"archive", result.ArchivePath,
		"files", result.Archive.Files,
		"sha512", result.Checksum,
		"warnings", len(result.Warnings),
	)

	return result, nil
}

// List returns the projects that can be built.
func List(ctx context.Context, opts *Options) ([]string, error) {
	ctx = logger.WithName(ctx, "tool-packager")

	_, ws, err := prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	return ws.Projects()
}

// prepare loads settings, applies overrides and resolves the workspace.
func prepare(ctx context.Context, opts *Options) (*config.Config, *workspace.Workspace, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	if opts.ProjectsRoot != "" {
		cfg.ProjectsRoot = opts.ProjectsRoot
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)
	logger.DebugKV(ctx, "Settings loaded", "config", opts.ConfigPath, "ignore", cfg.IgnorePatterns)

	root, err := cfg.ResolveProjectsRoot()
	if err != nil {
		return nil, nil, err
	}

	return cfg, workspace.New(root, cfg), nil
}
