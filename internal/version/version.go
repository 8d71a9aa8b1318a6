// Package version carries the binary version, overridden at build time
// via -ldflags "-X .../internal/version.Version=v1.2.3".
package version

var Version = "dev"
