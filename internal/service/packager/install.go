package packager

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// installFileSuffix is appended to the build name to name the install document.
const installFileSuffix = "_INSTALL.txt"

//go:embed install.tmpl
var defaultInstallTemplate string

// installData is the data passed to the install document template.
type installData struct {
	// BuildName is the $NAME of the manifest.
	BuildName string
	// Archive is the archive file name, version suffix included.
	Archive string
	// InstalledFiles has one "<install root><target> => <source>" line per mapping.
	InstalledFiles []string
	// DocLink is the $DOC_LINK of the manifest.
	DocLink string
	// Version is the raw version string, empty when unknown.
	Version string
	// Contacts are the footer lines.
	Contacts []string
}

// parseInstallTemplate returns the embedded template or the one stored at path.
func parseInstallTemplate(path string) (*template.Template, error) {
	text := defaultInstallTemplate
	name := "install"

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read install template: %w", err)
		}

		text = string(contents)
		name = filepath.Base(path)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse install template: %w", err)
	}

	return tmpl, nil
}

func renderInstall(tmpl *template.Template, data *installData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render install document: %w", err)
	}

	return buf.Bytes(), nil
}

func installFileName(buildName string) string {
	return buildName + installFileSuffix
}
