package app

// Build information populated via -ldflags at build time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString is shown by --version.
func VersionString() string {
	return BuildVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
