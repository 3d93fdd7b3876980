package version

// These variables are set via ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date when known
func GetFullVersion() string {
	if Version == "dev" {
		return "dev"
	}
	full := Version
	if GitCommit != "unknown" {
		full += " (" + GitCommit
		if BuildDate != "unknown" {
			full += ", " + BuildDate
		}
		full += ")"
	}
	return full
}
