package version

import "fmt"

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

func GetVersion() string {
	return fmt.Sprintf("mars_aio %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func GetShortVersion() string {
	return Version
}

// ServerName is the product token sent in the Server response header.
func ServerName() string {
	if Version == "" {
		return "mars-aio"
	}
	return "mars-aio/" + Version
}
