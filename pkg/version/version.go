// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	-X github.com/Sumatoshi-tech/outlier/pkg/version.Version=v1.2.3
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	develVersion    = "(devel)"
)

// InitBinaryVersion fills unset metadata from the module build info, so
// `go install` builds report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case settingRevision:
			if Commit == "none" {
				Commit = setting.Value
			}
		case settingTime:
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for the version command.
func String() string {
	return fmt.Sprintf("outlier %s (commit: %s, built: %s)", Version, Commit, Date)
}
