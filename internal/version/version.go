// Package version carries the build metadata stamped into the swing rig
// binary via -ldflags, reported on /health and in the startup log.
package version

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
