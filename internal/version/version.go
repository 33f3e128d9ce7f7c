// Package version provides build-time metadata for the fingerprint binaries.
//
// All variables have sensible defaults and can be overridden at build time
// using -ldflags:
//
//	go build -ldflags "\
//	  -X 'github.com/slashdevops/fingerprint/internal/version.Version=1.0.0' \
//	  -X 'github.com/slashdevops/fingerprint/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)'"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the current version of the application
	Version = "0.0.0"

	// BuildDate is the date the application was built
	BuildDate = "1970-01-01T00:00:00Z"

	// GitCommit is the commit hash the application was built from
	GitCommit = ""

	// GitBranch is the branch the application was built from
	GitBranch = ""

	// BuildUser is the user that built the application
	BuildUser = ""

	// GoVersion is the version of Go used to build the application
	GoVersion = runtime.Version()

	// GoVersionArch is the architecture of Go used to build the application
	GoVersionArch = runtime.GOARCH

	// GoVersionOS is the operating system of Go used to build the application
	GoVersionOS = runtime.GOOS
)

// UserAgent identifies this build on outbound requests.
func UserAgent() string {
	return fmt.Sprintf("fingerprint/%s (%s; %s)", Version, GoVersionOS, GoVersionArch)
}

// Identity is the identity string of hosts that have no browser of their
// own. It carries no version, so upgrading the binary leaves identifiers
// derived from it unchanged.
func Identity() string {
	return fmt.Sprintf("fingerprint (%s; %s)", GoVersionOS, GoVersionArch)
}
