package app

// Build information populated via -ldflags at release time.
var (
	// BuildVersion is recorded in every page manifest.
	BuildVersion = "0.0.0-dev"
	// BuildCommit is the VCS commit SHA, recorded next to BuildVersion.
	BuildCommit = "unknown"
)
