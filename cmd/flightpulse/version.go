package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FeelPulse/flightpulse/internal/config"
)

// Build info - set via ldflags at build time:
//
//	go build -ldflags "-X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ) -X main.gitCommit=$(git rev-parse --short HEAD)"
var (
	buildTime = "unknown"
	gitCommit = "unknown"
)

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string
	GoVersion string
	BuildTime string
	GitCommit string
	Platform  string
	Provider  string
	Features  []string
}

// GetVersionInfo returns the version information for cfg
func GetVersionInfo(cfg *config.Config) *VersionInfo {
	info := &VersionInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		BuildTime: buildTime,
		GitCommit: gitCommit,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if cfg != nil {
		info.Provider = cfg.Agent.Provider
		info.Features = enabledFeatures(cfg)
	}
	return info
}

func enabledFeatures(cfg *config.Config) []string {
	features := []string{}
	if cfg.Agent.FallbackProvider != "" {
		features = append(features, "fallback:"+cfg.Agent.FallbackProvider)
	}
	if cfg.History.Enabled {
		features = append(features, "history")
	}
	if cfg.Metrics.Enabled {
		features = append(features, "metrics")
	}
	if cfg.Amadeus.BaseURL != "" && cfg.Amadeus.BaseURL != config.AmadeusTestURL {
		features = append(features, "custom-vendor")
	}
	return features
}

// String returns formatted version information
func (v *VersionInfo) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("FlightPulse v%s\n", v.Version))
	sb.WriteString(fmt.Sprintf("  Go:       %s\n", v.GoVersion))
	sb.WriteString(fmt.Sprintf("  Platform: %s\n", v.Platform))
	sb.WriteString(fmt.Sprintf("  Build:    %s\n", v.BuildTime))
	sb.WriteString(fmt.Sprintf("  Commit:   %s\n", v.GitCommit))
	if v.Provider != "" {
		sb.WriteString(fmt.Sprintf("  Provider: %s\n", v.Provider))
	}

	if len(v.Features) > 0 {
		sb.WriteString(fmt.Sprintf("  Features: %s\n", strings.Join(v.Features, ", ")))
	} else {
		sb.WriteString("  Features: (none enabled)\n")
	}

	return sb.String()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			cfg = nil
		}
		fmt.Print(GetVersionInfo(cfg).String())
	},
}
