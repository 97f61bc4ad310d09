package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/tool-packager/internal/logger"
)

// Config holds the packager settings shared by the CLI and the build service.
type Config struct {
	// ProjectsRoot is the directory whose subdirectories are packageable projects.
	// Empty means the parent of the current working directory.
	ProjectsRoot string `yaml:"projects_root"`
	// BuildsDir is the sibling directory of the projects that holds staging directories.
	BuildsDir string `yaml:"builds_dir"`
	// ArchivesDir is the subdirectory of BuildsDir where final archives are written.
	ArchivesDir string `yaml:"archives_dir"`
	// ManifestName is the per-project manifest file name.
	ManifestName string `yaml:"manifest_name"`
	// InstallRoot prefixes every line of the installed files list.
	InstallRoot string `yaml:"install_root"`
	// IgnorePatterns are gitignore-style rules excluded from every copy.
	IgnorePatterns []string `yaml:"ignore_patterns"`
	// Contacts are the footer lines of the install document.
	Contacts []string `yaml:"contacts"`
	// TemplatePath optionally overrides the embedded install document template.
	TemplatePath string `yaml:"template_path,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for packager settings.
	DefaultConfigFilename = "tool-packager.yaml"

	// DefaultBuildsDir is the directory next to the projects where builds happen.
	DefaultBuildsDir = "HoudiniToolsBuilds"

	// DefaultArchivesDir is the archive output folder inside DefaultBuildsDir.
	DefaultArchivesDir = "builds"

	// DefaultManifestName is the manifest file looked up in every project.
	DefaultManifestName = "build_infos.txt"

	// DefaultInstallRoot is the placeholder install location shown to users.
	DefaultInstallRoot = "$HOME/houdiniXX.X/"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// DefaultIgnorePatterns exclude compiled Python bytecode from every build.
//
//nolint:gochecknoglobals // Read-only defaults, copied before use.
var DefaultIgnorePatterns = []string{"*.pyc", "*.pyo", "__pycache__/"}

// DefaultContacts end every install document.
//
//nolint:gochecknoglobals // Read-only defaults, copied before use.
var DefaultContacts = []string{"www.cgtoolbox.com", "contact@cgtoolbox.com"}

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidDirName is returned when a layout directory is not a plain name.
	errInvalidDirName = errors.New("directory must be a single path segment")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("unknown log level")
)

// Default returns a configuration populated with default values.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the layout names and the log level.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	for _, name := range []string{cfg.BuildsDir, cfg.ArchivesDir, cfg.ManifestName} {
		if !isPlainName(name) {
			return fmt.Errorf("%w: %q", errInvalidDirName, name)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}

// ResolveProjectsRoot returns an absolute projects root, defaulting to the parent of the working directory.
func (c *Config) ResolveProjectsRoot() (string, error) {
	root := c.ProjectsRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}

		root = filepath.Dir(wd)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve projects root: %w", err)
	}

	return abs, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BuildsDir == "" {
		cfg.BuildsDir = DefaultBuildsDir
	}

	if cfg.ArchivesDir == "" {
		cfg.ArchivesDir = DefaultArchivesDir
	}

	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}

	if cfg.InstallRoot == "" {
		cfg.InstallRoot = DefaultInstallRoot
	}

	if cfg.IgnorePatterns == nil {
		cfg.IgnorePatterns = append([]string(nil), DefaultIgnorePatterns...)
	}

	if cfg.Contacts == nil {
		cfg.Contacts = append([]string(nil), DefaultContacts...)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, `/\`) && path.Base(name) == name
}
