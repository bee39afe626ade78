// Package build holds build-time information stamped by the linker.
package build

var (
	// Version is the release of the shade binary; "dev" for local builds.
	Version = "dev"

	// Commit is the VCS revision the binary was built from, empty when unknown.
	Commit = ""
)

// Describe returns the version, followed by the commit when one was stamped.
func Describe() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
