package packager

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-billy/v5"

	"github.com/oshokin/tool-packager/internal/manifest"
)

// versionMarker starts the line that carries the project version.
const versionMarker = "__version__"

// versionSuffix resolves the $VERSION directive into an archive name suffix such as "_v1_2_3".
// Every problem is reported as a warning and yields an empty suffix.
func (b *build) versionSuffix(ctx context.Context, src billy.Filesystem, m *manifest.Manifest) (string, string) {
	versionFile, ok := m.VersionFile()
	if !ok {
		return "", ""
	}

	cleaned, err := manifest.CleanPath(versionFile)
	if err != nil {
		b.warn(ctx, "Ignoring $VERSION", "path", versionFile, "error", err)
		return "", ""
	}

	raw, err := readVersion(src, src.Join(strings.Split(cleaned, "/")...))
	if err != nil {
		b.warn(ctx, "Ignoring $VERSION", "path", cleaned, "error", err)
		return "", ""
	}

	if raw == "" {
		b.warn(ctx, "No "+versionMarker+" line found", "path", cleaned)
		return "", ""
	}

	if strings.ContainsAny(raw, `/\:`) {
		b.warn(ctx, "Version is not usable in a file name", "version", raw)
		return "", ""
	}

	if _, err = semver.NewVersion(raw); err != nil {
		b.warn(ctx, "Version is not a semantic version", "version", raw, "error", err)
	}

	return raw, "_v" + strings.ReplaceAll(raw, ".", "_")
}

// readVersion returns the value of the first line starting with __version__, or "" when there is none.
func readVersion(src billy.Filesystem, name string) (string, error) {
	f, err := src.Open(name)
	if err != nil {
		return "", fmt.Errorf("open version file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if !strings.HasPrefix(line, versionMarker) {
			continue
		}

		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		if i := strings.Index(value, "#"); i >= 0 {
			value = value[:i]
		}

		return strings.Trim(strings.TrimSpace(value), `"'`), nil
	}

	if err = s.Err(); err != nil {
		return "", fmt.Errorf("read version file: %w", err)
	}

	return "", nil
}
