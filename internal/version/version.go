// Package version exposes the application version reported by the API and CLI.
package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=...".
var Version = "0.4.0-dev"
