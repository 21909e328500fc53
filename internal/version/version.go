package version

// Version contains the application version information.
// It is set via build-time ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/mdxsite/internal/version.Version=v0.3.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version with the commit when it is known.
func String() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
