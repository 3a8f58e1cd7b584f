// Package version embeds build information into restadapter binaries and
// derives the default User-Agent from it.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/restadapter/version.Version=1.0.0" ./cmd/restadapter
package version
