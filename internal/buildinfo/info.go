// Package buildinfo carries version metadata stamped in with -ldflags.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// String describes the build. Unstamped builds fall back to the module
// version and VCS revision recorded by the Go toolchain.
func String() string {
	version, commit, date := Version, Commit, Date
	if version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				version = v
			}
			for _, s := range bi.Settings {
				switch {
				case s.Key == "vcs.revision" && commit == "none" && len(s.Value) >= 7:
					commit = s.Value[:7]
				case s.Key == "vcs.time" && date == "unknown":
					date = s.Value
				}
			}
		}
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
