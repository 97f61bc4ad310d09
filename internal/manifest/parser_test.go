package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `# Example tool manifest
$NAME:ExampleTool
$DOC_LINK:https://example.com/docs/example-tool
$VERSION:python/example/__init__.py

otls:otls
icons/tool.svg:res/tool.svg
scripts/python/example:python/example
`

func TestParse_Sample(t *testing.T) {
	t.Parallel()

	m, err := ParseString(sampleManifest)
	require.NoError(t, err)

	assert.Equal(t, "ExampleTool", m.Name())
	assert.Equal(t, "https://example.com/docs/example-tool", m.DocLink())

	versionFile, ok := m.VersionFile()
	assert.True(t, ok)
	assert.Equal(t, "python/example/__init__.py", versionFile)

	mappings := m.Mappings()
	require.Len(t, mappings, 3)
	assert.Equal(t, Mapping{Line: 6, Target: "otls", Source: "otls"}, mappings[0])
	assert.Equal(t, Mapping{Line: 7, Target: "icons/tool.svg", Source: "res/tool.svg"}, mappings[1])
	assert.Equal(t, []string{"scripts", "python", "example"}, mappings[2].TargetSegments())
	assert.Equal(t, []string{"python", "example"}, mappings[2].SourceSegments())

	require.Len(t, m.Entries, 7)
	assert.Equal(t, KindComment, m.Entries[0].Kind)
	assert.Equal(t, "Example tool manifest", m.Entries[0].Text)
	assert.Empty(t, m.Warnings())
	assert.NoError(t, m.Validate())
}

func TestParse_Lines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Entry
		wantErr error
	}{
		{
			name: "windows line ending",
			line: "icons:res\r\n",
			want: Entry{Line: 1, Kind: KindMapping, Mapping: Mapping{Line: 1, Target: "icons", Source: "res"}},
		},
		{
			name: "path is cleaned",
			line: "a/./b/:src//c",
			want: Entry{Line: 1, Kind: KindMapping, Mapping: Mapping{Line: 1, Target: "a/b", Source: "src/c"}},
		},
		{
			name: "backslashes become slashes",
			line: `icons\big:res\big`,
			want: Entry{Line: 1, Kind: KindMapping, Mapping: Mapping{Line: 1, Target: "icons/big", Source: "res/big"}},
		},
		{
			name: "directive keeps colons in value",
			line: "$DOC_LINK:http://host:8080/page",
			want: Entry{Line: 1, Kind: KindDirective, Key: "DOC_LINK", Value: "http://host:8080/page"},
		},
		{
			name: "directive without value",
			line: "$NAME",
			want: Entry{Line: 1, Kind: KindDirective, Key: "NAME"},
		},
		{
			name:    "directive without key",
			line:    "$:value",
			wantErr: ErrMalformedEntry,
		},
		{
			name:    "mapping without colon",
			line:    "icons",
			wantErr: ErrMalformedEntry,
		},
		{
			name:    "empty source",
			line:    "icons:",
			wantErr: ErrMalformedEntry,
		},
		{
			name:    "absolute source",
			line:    "icons:/etc/passwd",
			wantErr: ErrMalformedEntry,
		},
		{
			name:    "escaping target",
			line:    "../outside:res",
			wantErr: ErrMalformedEntry,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := ParseString(tt.line)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)

				return
			}

			require.NoError(t, err)
			require.Len(t, m.Entries, 1)
			assert.Equal(t, tt.want, m.Entries[0])
		})
	}
}

func TestParse_MalformedLineWithoutName(t *testing.T) {
	t.Parallel()

	_, err := ParseString("# no name\nicons:res/tool.svg\nREADME\n")
	require.ErrorIs(t, err, ErrMissingName)
	require.ErrorIs(t, err, ErrMalformedEntry)

	_, err = ParseString("$NAME:Tool\nREADME\n")
	require.ErrorIs(t, err, ErrMalformedEntry)
	require.NotErrorIs(t, err, ErrMissingName)
}

func TestParse_DuplicateDirectiveFirstWins(t *testing.T) {
	t.Parallel()

	m, err := ParseString("$NAME:First\n$NAME:Second\n")
	require.NoError(t, err)

	assert.Equal(t, "First", m.Name())
	require.Len(t, m.Warnings(), 1)
	assert.Contains(t, m.Warnings()[0], "duplicate $NAME")
}

func TestValidate_Name(t *testing.T) {
	t.Parallel()

	m, err := ParseString("# no name here\nicons:res\n")
	require.NoError(t, err)
	require.ErrorIs(t, m.Validate(), ErrMissingName)

	m, err = ParseString("$NAME:\n")
	require.NoError(t, err)
	require.ErrorIs(t, m.Validate(), ErrMissingName)

	require.ErrorIs(t, ValidateName("a/b"), ErrInvalidBuildName)
	require.ErrorIs(t, ValidateName(".."), ErrInvalidBuildName)
	require.ErrorIs(t, ValidateName("Builds", "builds"), ErrInvalidBuildName)
	require.NoError(t, ValidateName("ExampleTool", "builds"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "build_infos.txt"))
	require.ErrorIs(t, err, ErrMissingManifest)

	path := filepath.Join(dir, "build_infos.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ExampleTool", m.Name())
}
