package version

import "fmt"

// Build metadata, injected with -ldflags "-X lootradar/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// UserAgent is sent with every upstream request unless overridden in config.
func UserAgent() string {
	return fmt.Sprintf("lootradar/%s", Version)
}
