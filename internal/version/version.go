package version

import (
	"runtime/debug"
)

// Version will be set during build time via ldflags
var Version = "dev"

// BuildTime will be set during build time via ldflags
var BuildTime = "unknown"

// GitCommit will be set during build time via ldflags
var GitCommit = "unknown"

// GetVersionInfo returns the version, falling back to the module build info
// when ldflags were not set
func GetVersionInfo() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return "dev-" + s.Value[:7]
			}
		}
	}
	return Version
}

// GetFullVersionInfo returns detailed version information
func GetFullVersionInfo() string {
	version := GetVersionInfo()
	if BuildTime != "unknown" && GitCommit != "unknown" {
		return version + " (built " + BuildTime + ", commit " + GitCommit + ")"
	}
	if GitCommit != "unknown" {
		return version + " (commit " + GitCommit + ")"
	}
	return version
}

// UserAgent is sent with outbound feed requests
func UserAgent() string {
	return "domainsuffixes/" + GetVersionInfo()
}
