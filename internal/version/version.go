package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Placeholders left in the variables below when -ldflags did not set them.
const (
	unsetCommit    = "none"
	unsetBuildTime = "unknown"
	shortCommitLen = 12
)

//nolint:gochecknoglobals // Overridden with -ldflags -X at link time.
var (
	// Version is the tool-packager release.
	Version = "0.1.0"
	// Commit is the source revision.
	Commit = unsetCommit
	// BuildTime is the UTC build timestamp.
	BuildTime = unsetBuildTime
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
	GoVersion string
}

// Current returns the linked-in values, completed from the embedded build info.
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == unsetCommit {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == unsetBuildTime {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	if len(info.Commit) > shortCommitLen {
		info.Commit = info.Commit[:shortCommitLen]
	}

	return info
}

// Short returns only the release string.
func Short() string {
	return Version
}

// Full returns the one-line description printed by `tool-packager version`.
func Full() string {
	return Current().String()
}

// String implements fmt.Stringer.
func (i Info) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "tool-packager %s (commit %s", i.Version, i.Commit)

	if i.Modified {
		b.WriteString(", dirty")
	}

	fmt.Fprintf(&b, ", built %s, %s)", i.BuildTime, i.GoVersion)

	return b.String()
}
