// Package version holds build information set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/ChristianF88/recsort/version.Version=1.2.0 -X github.com/ChristianF88/recsort/version.Date=2025-06-30T00:00:00Z"
package version

var (
	Version = "dev"
	Date    = ""
)
