package packager

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/tool-packager/internal/archive"
	"github.com/oshokin/tool-packager/internal/config"
	"github.com/oshokin/tool-packager/internal/ignore"
	"github.com/oshokin/tool-packager/internal/logger"
	"github.com/oshokin/tool-packager/internal/manifest"
	"github.com/oshokin/tool-packager/internal/repository/staging"
)

// archiveExtension is appended to every archive name.
const archiveExtension = ".zip"

// Packager turns project manifests into archives under one builds root.
type Packager struct {
	// buildsRoot is the directory holding staging areas and the archives folder.
	buildsRoot string
	// archivesDir is the archives folder name inside buildsRoot.
	archivesDir string
	// installRoot prefixes every installed files line.
	installRoot string
	// contacts end the install document.
	contacts []string
	// ignore filters files out of every copy.
	ignore *ignore.Matcher
	// install renders the install document.
	install *template.Template
	// staging owns the builds root filesystem.
	staging *staging.Repository
	// progress receives a progress bar while staging; nil disables it.
	progress io.Writer
	// sourceFS opens a project root as a filesystem.
	sourceFS func(root string) billy.Filesystem
}

// Option configures a Packager.
type Option func(*Packager)

// WithArchivesDir sets the archives folder name inside the builds root.
func WithArchivesDir(name string) Option {
	return func(p *Packager) {
		if name != "" {
			p.archivesDir = name
		}
	}
}

// WithInstallRoot sets the placeholder install location used in the install document.
func WithInstallRoot(root string) Option {
	return func(p *Packager) {
		p.installRoot = root
	}
}

// WithContacts sets the footer lines of the install document.
func WithContacts(contacts []string) Option {
	return func(p *Packager) {
		p.contacts = contacts
	}
}

// WithIgnorePatterns replaces the default ignore rules.
func WithIgnorePatterns(patterns []string) Option {
	return func(p *Packager) {
		p.ignore = ignore.New(patterns)
	}
}

// WithProgress draws a progress bar on w while staging.
func WithProgress(w io.Writer) Option {
	return func(p *Packager) {
		p.progress = w
	}
}

// WithBuildsFilesystem stages and publishes through fs instead of the OS filesystem at the builds root.
func WithBuildsFilesystem(fs billy.Filesystem) Option {
	return func(p *Packager) {
		p.staging = staging.NewRepository(fs)
	}
}

// WithSourceFilesystem resolves project roots through open instead of the OS filesystem.
func WithSourceFilesystem(open func(root string) billy.Filesystem) Option {
	return func(p *Packager) {
		if open != nil {
			p.sourceFS = open
		}
	}
}

// withTemplate overrides the install document template.
func withTemplate(tmpl *template.Template) Option {
	return func(p *Packager) {
		p.install = tmpl
	}
}

// New creates a packager writing under buildsRoot.
func New(buildsRoot string, opts ...Option) (*Packager, error) {
	tmpl, err := parseInstallTemplate("")
	if err != nil {
		return nil, err
	}

	p := &Packager{
		buildsRoot:  buildsRoot,
		archivesDir: config.DefaultArchivesDir,
		installRoot: config.DefaultInstallRoot,
		contacts:    config.DefaultContacts,
		ignore:      ignore.New(config.DefaultIgnorePatterns),
		install:     tmpl,
		sourceFS: func(root string) billy.Filesystem {
			return osfs.New(root)
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.staging == nil {
		p.staging = staging.NewRepository(osfs.New(buildsRoot))
	}

	return p, nil
}

// NewFromConfig creates a packager for the builds root using every setting from cfg.
func NewFromConfig(buildsRoot string, cfg *config.Config, opts ...Option) (*Packager, error) {
	tmpl, err := parseInstallTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithArchivesDir(cfg.ArchivesDir),
		WithInstallRoot(cfg.InstallRoot),
		WithContacts(cfg.Contacts),
		WithIgnorePatterns(cfg.IgnorePatterns),
		withTemplate(tmpl),
	}

	return New(buildsRoot, append(base, opts...)...)
}

// Result describes a finished build.
type Result struct {
	// BuildName is the $NAME of the manifest.
	BuildName string
	// Version is the raw project version, empty when unknown.
	Version string
	// VersionSuffix is the "_vX_Y_Z" part of the archive name, possibly empty.
	VersionSuffix string
	// ArchivePath is where the archive was written.
	ArchivePath string
	// InstalledFiles has one install document line per mapping, in manifest order.
	InstalledFiles []string
	// Staged lists every file put into the archive, relative to its root.
	Staged []string
	// Skipped lists sources left out by the ignore rules.
	Skipped []string
	// Warnings collects every non-fatal problem of the build.
	Warnings []string
	// Archive holds archive entry counts.
	Archive archive.Stats
	// Checksum is the hex SHA-512 of the published archive.
	Checksum string
}

// build holds the mutable state of one Build call.
type build struct {
	*Packager

	result *Result
}

// Build packages the project at projectRoot according to the manifest at manifestPath.
// Either a complete archive is published or an error is returned.
func (p *Packager) Build(ctx context.Context, projectRoot, manifestPath string) (*Result, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	return p.BuildManifest(ctx, projectRoot, m)
}

// BuildManifest packages the project at projectRoot according to an already parsed manifest.
func (p *Packager) BuildManifest(ctx context.Context, projectRoot string, m *manifest.Manifest) (*Result, error) {
	if err := m.Validate(p.archivesDir); err != nil {
		return nil, err
	}

	b := &build{
		Packager: p,
		result: &Result{
			BuildName:      m.Name(),
			InstalledFiles: make([]string, 0, len(m.Entries)),
		},
	}

	ctx = logger.WithKV(ctx, "build", b.result.BuildName)

	if err := b.run(ctx, p.sourceFS(projectRoot), projectRoot, m); err != nil {
		return nil, err
	}

	return b.result, nil
}

func (b *build) run(ctx context.Context, src billy.Filesystem, projectRoot string, m *manifest.Manifest) error {
	for _, w := range m.Warnings() {
		b.warn(ctx, "Manifest warning", "detail", w)
	}

	name := b.result.BuildName
	b.result.Version, b.result.VersionSuffix = b.versionSuffix(ctx, src, m)

	area, leftover, err := b.staging.Reset(name)
	if err != nil {
		return err
	}

	if leftover {
		b.warn(ctx, "Removed leftover staging directory", "path", path.Join(b.staging.Root(), name))
	}

	logger.InfoKV(ctx, "Build folder", "path", filepath.Join(b.staging.Root(), name))

	mappings := m.Mappings()
	bar := b.newProgressBar(len(mappings))

	for _, mapping := range mappings {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = b.stage(ctx, src, projectRoot, area, mapping); err != nil {
			return err
		}

		b.result.InstalledFiles = append(b.result.InstalledFiles, b.installRoot+mapping.String())

		_ = bar.Add(1)
	}

	_ = bar.Finish()

	archiveName := name + b.result.VersionSuffix + archiveExtension

	if err = b.writeInstallDocument(ctx, area, archiveName, m.DocLink()); err != nil {
		return err
	}

	if err = b.publish(ctx, area, archiveName); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Cleaning build folder", "path", area.Name())

	if err = b.staging.Remove(name); err != nil {
		return err
	}

	return nil
}

// stage copies one mapping into the staging area.
func (b *build) stage(
	ctx context.Context,
	src billy.Filesystem,
	projectRoot string,
	area *staging.Area,
	mapping manifest.Mapping,
) error {
	srcPath := src.Join(mapping.SourceSegments()...)

	info, err := src.Stat(srcPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", mapping.Source, err)
	}

	var report staging.CopyReport

	switch {
	case err != nil:
		return &InvalidSourceError{
			Path: filepath.Join(projectRoot, filepath.FromSlash(mapping.Source)),
			Line: mapping.Line,
		}
	case info.Mode().IsRegular():
		if b.ignore.Ignored(mapping.Source, false) {
			logger.InfoKV(ctx, "Skipping ignored file", "source", mapping.Source)
			b.result.Skipped = append(b.result.Skipped, mapping.Source)

			return nil
		}

		logger.InfoKV(ctx, "Copying file", "source", mapping.Source, "target", mapping.Target)

		report, err = area.CopyFile(src, srcPath, fileTarget(mapping))
	case info.IsDir():
		logger.InfoKV(ctx, "Copying folder", "source", mapping.Source, "target", mapping.Target)

		report, err = area.CopyTree(src, srcPath, mapping.Target, b.ignore.Ignored)
	default:
		return &InvalidSourceError{
			Path: filepath.Join(projectRoot, filepath.FromSlash(mapping.Source)),
			Line: mapping.Line,
		}
	}

	if err != nil {
		return fmt.Errorf("stage %s: %w", mapping, err)
	}

	for _, overwritten := range report.Overwritten {
		b.warn(ctx, "Overwriting file staged by an earlier entry", "target", overwritten, "line", mapping.Line)
	}

	for _, skipped := range report.Skipped {
		b.result.Skipped = append(b.result.Skipped, path.Join(mapping.Source, skipped))
	}

	b.result.Staged = append(b.result.Staged, report.Copied...)

	return nil
}

// fileTarget returns the staged path of a single-file mapping. The file name is always kept:
// a target ending in that name is the file path itself, any other target is its folder.
func fileTarget(mapping manifest.Mapping) string {
	base := path.Base(mapping.Source)
	if path.Base(mapping.Target) == base {
		return mapping.Target
	}

	return path.Join(mapping.Target, base)
}

func (b *build) writeInstallDocument(ctx context.Context, area *staging.Area, archiveName, docLink string) error {
	contents, err := renderInstall(b.install, &installData{
		BuildName:      b.result.BuildName,
		Archive:        archiveName,
		InstalledFiles: b.result.InstalledFiles,
		DocLink:        docLink,
		Version:        b.result.Version,
		Contacts:       b.contacts,
	})
	if err != nil {
		return err
	}

	name := installFileName(b.result.BuildName)

	_, statErr := area.FS().Stat(name)

	exists := statErr == nil
	if exists {
		b.warn(ctx, "Install infos replace a staged file", "target", name)
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", name, statErr)
	}

	logger.InfoKV(ctx, "Writing install infos", "file", name)

	if err = area.WriteFile(name, contents); err != nil {
		return err
	}

	if !exists {
		b.result.Staged = append(b.result.Staged, name)
	}

	return nil
}

func (b *build) publish(ctx context.Context, area *staging.Area, archiveName string) error {
	rel := path.Join(b.archivesDir, archiveName)
	b.result.ArchivePath = filepath.Join(b.buildsRoot, b.archivesDir, archiveName)

	logger.InfoKV(ctx, "Creating archive", "path", b.result.ArchivePath)

	hasher := sha512.New()

	err := b.staging.Publish(rel, func(w io.Writer) error {
		stats, err := archive.Write(ctx, io.MultiWriter(w, hasher), area.FS(), ".")
		b.result.Archive = stats

		return err
	})
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	b.result.Checksum = hex.EncodeToString(hasher.Sum(nil))

	return nil
}

func (b *build) newProgressBar(total int) *progressbar.ProgressBar {
	if b.progress == nil {
		return progressbar.DefaultSilent(int64(total))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.progress),
		progressbar.OptionSetDescription("Staging "+b.result.BuildName),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// warn logs a warning and records it in the result.
func (b *build) warn(ctx context.Context, message string, kvs ...any) {
	logger.WarnKV(ctx, message, kvs...)

	var sb strings.Builder

	sb.WriteString(message)

	for i := 0; i+1 < len(kvs); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", kvs[i], kvs[i+1])
	}

	b.result.Warnings = append(b.result.Warnings, sb.String())
}
