// Package version carries the build identity stamped into the ubxcfg binary.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Release builds inject both values via ldflags:
//
//	go build -ldflags="-X github.com/muurk/ubxcfg/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/ubxcfg/internal/version.Commit=abc123"
//
// Anything else (go install, a plain go build from a checkout) falls back to
// the VCS stamp embedded in the build info, and finally to a dated dev string
// so a bug report always identifies some build.
var (
	// Version is the release tag, or a dev placeholder.
	Version = ""
	// Commit is the short git revision the binary was built from.
	Commit = ""
)

// shortHashLen matches git's default abbreviated hash length.
const shortHashLen = 7

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills whatever ldflags left empty from the module build
// info's vcs.* settings.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	var revision, modified, stamp string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			stamp = s.Value
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > shortHashLen {
			revision = revision[:shortHashLen]
		}
		Commit = revision
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	// Build info has no tags, so an untagged build is dated by its commit.
	if Version == "" && stamp != "" {
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full renders version and commit in the form the CLI prints.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
