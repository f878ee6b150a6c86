// Package build holds build-time version metadata for the CLI.
package build

// Version is the mill version, overridden at release time via
// -ldflags "-X go.trai.ch/mill/internal/build.Version=...".
var Version = "dev"
