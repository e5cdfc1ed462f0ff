// Package buildinfo carries values stamped at link time:
//
//	go build -ldflags "\
//	  -X 'github.com/m3rciful/autoservice-bot/core/buildinfo.Version=v1.0.0' \
//	  -X 'github.com/m3rciful/autoservice-bot/core/buildinfo.Commit=abcdef0' \
//	  -X 'github.com/m3rciful/autoservice-bot/core/buildinfo.Date=2025-08-30T12:00:00Z'"
package buildinfo

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the source revision.
	Commit = "local"
	// Date is the build time in RFC3339.
	Date = ""
)
