// Package version reports the server name and build version.
package version

import "runtime/debug"

// Name identifies the server in logs and the MCP handshake.
const Name = "fpa-copilot"

var version = "dev"

// Version prefers the module version stamped by `go install`, then a value
// set with -ldflags "-X .../pkg/version.version=...", then "dev".
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}

// Set overrides the fallback version, for example from a release script.
func Set(v string) {
	if v != "" {
		version = v
	}
}
