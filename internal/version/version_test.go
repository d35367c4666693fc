package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionFunctions(t *testing.T) {
	origVersion, origBuildDate, origCommit := Version, BuildDate, Commit
	t.Cleanup(func() {
		Version, BuildDate, Commit = origVersion, origBuildDate, origCommit
	})

	tests := []struct {
		name       string
		version    string
		buildDate  string
		commit     string
		wantFull   string
		wantShort  string
		wantServer string
	}{
		{
			name:       "Default dev version",
			version:    "dev",
			buildDate:  "unknown",
			commit:     "unknown",
			wantFull:   "mars_aio dev (commit: unknown, built: unknown)",
			wantShort:  "dev",
			wantServer: "mars-aio/dev",
		},
		{
			name:       "Release version",
			version:    "v1.0.0",
			buildDate:  "2026-10-18",
			commit:     "abcdef123",
			wantFull:   "mars_aio v1.0.0 (commit: abcdef123, built: 2026-10-18)",
			wantShort:  "v1.0.0",
			wantServer: "mars-aio/v1.0.0",
		},
		{
			name:       "Empty values",
			wantFull:   "mars_aio  (commit: , built: )",
			wantShort:  "",
			wantServer: "mars-aio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			BuildDate = tt.buildDate
			Commit = tt.commit

			assert.Equal(t, tt.wantFull, GetVersion())
			assert.Equal(t, tt.wantShort, GetShortVersion())
			assert.Equal(t, tt.wantServer, ServerName())
		})
	}
}
