// Package buildinfo holds release metadata stamped into the donagg binary.
package buildinfo

// Set with -ldflags "-X github.com/campaign-data/donagg/internal/buildinfo.Version=..."
// by release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
