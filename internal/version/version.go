// Package version carries the build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Full renders the complete build description shown by `luminor version`.
func Full() string {
	return fmt.Sprintf("%s (%s) built %s %s %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
