package app

import "fmt"

// Build information, overridden with -ldflags "-X" at release time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString renders the build information for `searchdash version`.
func VersionString() string {
	return fmt.Sprintf("searchdash %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
