// Package version exposes build version information.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info holds build version details.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns version information, filling gaps from the embedded VCS build
// info when ldflags were not provided.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
				if len(info.GitCommit) > 7 {
					info.GitCommit = info.GitCommit[:7]
				}
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildTime = t.Format(time.RFC3339)
				}
			}
		}
	}
	return info
}

// Short returns a compact version string like "0.1.0-ab12cd3".
func Short() string {
	info := Get()
	s := info.Version
	if info.GitCommit != "" {
		s = fmt.Sprintf("%s-%s", s, info.GitCommit)
	}
	if info.Dirty {
		s += "-dirty"
	}
	return s
}
