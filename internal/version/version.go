package version

import "fmt"

// Version information (set via ldflags during build)
var (
	// Version is the current version of cukereport
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// Date is the build date
	Date = "unknown"

	// BuiltBy indicates how the binary was built
	BuiltBy = "source"
)

// GetVersion returns the current version
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// GetFullVersion returns the full version information
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, by: %s)",
		Version, Commit, Date, BuiltBy)
}

// Footer returns the version line shown at the bottom of generated pages
func Footer() string {
	return fmt.Sprintf("cukereport %s", GetVersion())
}
