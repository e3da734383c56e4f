package obs

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

var (
	buildInfoOnce sync.Once
	buildMu       sync.RWMutex
	currentBuild  = BuildInfo{Version: "dev", Commit: "unknown", GoVersion: runtime.Version()}

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "estate_web_build_info",
			Help: "Build information of the estate web front end; always 1.",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// InitBuildInfo publishes build_info for this binary. An empty or "dev"
// commit falls back to the VCS revision stamped by the Go toolchain.
func InitBuildInfo(version, commit string) BuildInfo {
	bi := BuildInfo{Version: version, Commit: commit, GoVersion: runtime.Version()}
	if bi.Version == "" {
		bi.Version = "dev"
	}
	if bi.Commit == "" || bi.Commit == "dev" {
		bi.Commit = vcsRevision()
	}

	buildInfoOnce.Do(func() {
		prometheus.MustRegister(buildInfo)
	})
	buildInfo.Reset()
	buildInfo.WithLabelValues(bi.Version, bi.Commit, bi.GoVersion).Set(1)

	buildMu.Lock()
	currentBuild = bi
	buildMu.Unlock()
	return bi
}

// CurrentBuild returns what InitBuildInfo last published.
func CurrentBuild() BuildInfo {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return currentBuild
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "unknown"
}
