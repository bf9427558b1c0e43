// Package build holds build-time information.
package build

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit and Date default to placeholders and can be overwritten by linker flags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			Date = s.Value
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("tandem version %s (commit: %s, date: %s)", Version, Commit, Date)
}
