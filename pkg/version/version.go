// Package version provides build and version information for rlzap.
package version

import (
	"fmt"
	"runtime"

	"github.com/jameslz/rlzap/pkg/lcp"
)

// Version is the current version of rlzap.
// Set via ldflags at build time, or defaults to dev.
// Makefile sets: -X github.com/jameslz/rlzap/pkg/version.Version=$(VERSION)
var Version = "dev"

// Build information set via ldflags at build time.
var (
	// Commit is the git commit hash.
	// Makefile sets: -X github.com/jameslz/rlzap/pkg/version.Commit=$(COMMIT)
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary (set at runtime).
	GoVersion = runtime.Version()
)

// FormatVersion is the index file layout this binary reads and writes.
const FormatVersion = lcp.FormatVersion

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Date          string `json:"date"`
	GoVersion     string `json:"go_version"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	FormatVersion uint16 `json:"format_version"`
}

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("rlzap %s (commit: %s, built: %s, go: %s, format: v%d)",
		Version, Commit, Date, GoVersion, FormatVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:       Version,
		Commit:        Commit,
		Date:          Date,
		GoVersion:     GoVersion,
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		FormatVersion: FormatVersion,
	}
}
