// Package version exposes the build metadata stamped into the camgrab
// binary at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set through -ldflags "-X github.com/smazurov/camgrab/internal/version.Version=..."
// and friends; the zero build is a dev build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	BuildID   = "unknown"
)

// Info is the full build record, served by the version endpoint.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// Get combines the linker-stamped values with the runtime environment.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		BuildID:   BuildID,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns the bare version, suitable for user-facing banners.
func String() string {
	return Version
}
