package version

// Version is set at build time via -ldflags "-X github.com/storecrew/storecrew/pkg/version.Version=vX.Y.Z".
var Version = "v0.1.0-dev"

// Get returns the current version of the application
func Get() string {
	return Version
}
