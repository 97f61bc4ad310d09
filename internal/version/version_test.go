package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestInfo_String(t *testing.T) {
	t.Parallel()

	info := Info{
		Version:   "1.4.0",
		Commit:    "0123456789ab",
		BuildTime: "2026-01-02T03:04:05Z",
		Modified:  true,
		GoVersion: "go1.25.0",
	}

	require.Equal(t,
		"tool-packager 1.4.0 (commit 0123456789ab, dirty, built 2026-01-02T03:04:05Z, go1.25.0)",
		info.String())
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	info := Current()
	require.Equal(t, Version, info.Version)
	require.Equal(t, runtime.Version(), info.GoVersion)
	require.NotEmpty(t, info.Commit)
	require.LessOrEqual(t, len(info.Commit), shortCommitLen)
	require.True(t, strings.HasPrefix(Full(), "tool-packager "+Short()))
}

func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{name: "full", args: []string{"version"}, want: Full() + "\n"},
		{name: "short", args: []string{"version", "--short"}, want: Short() + "\n"},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := &cobra.Command{Use: "tool-packager"}
			AttachCobraVersionCommand(root)

			var out bytes.Buffer

			root.SetOut(&out)
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			require.Equal(t, tt.want, out.String())
			require.Equal(t, Short(), root.Version)
		})
	}
}
