// Package version reports build information for the streamlist command.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/ohrlando/stream-list/version.Version=1.0.0"
//
// Missing values are filled from the module build info when available.
package version
