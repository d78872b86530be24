// Package config loads and persists review-engine defaults, following
// the teacher's home-then-project config layering: a user-wide default
// under the home directory, optionally overridden by a project-local
// file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the defaults applied when a CLI invocation does not
// override them explicitly.
type Config struct {
	ViewportWidth     int      `json:"viewportWidth"`
	ViewportHeight    int      `json:"viewportHeight"`
	NavigationTimeout int      `json:"navigationTimeoutSeconds"`
	PixelThreshold    float64  `json:"pixelThreshold"`
	SSIMThreshold     float64  `json:"ssimThreshold"`
	SpecSearchRoots   []string `json:"specSearchRoots"`
	ArtifactRoot      string   `json:"artifactRoot"`
	BrowserBinary     string   `json:"browserBinary"`
	BrowserRemotePort int      `json:"browserRemotePort"`
	SourceSearchRoot  string   `json:"sourceSearchRoot"`
}

func getHomeConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".canvasreview")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func getProjectConfigPath() string {
	return filepath.Join(".", ".canvasreview.json")
}

func setDefaultValues(c *Config) {
	if c.ViewportWidth == 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = 800
	}
	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = 30
	}
	if c.PixelThreshold == 0 {
		c.PixelThreshold = 5.0
	}
	if c.SSIMThreshold == 0 {
		c.SSIMThreshold = 0.95
	}
	if len(c.SpecSearchRoots) == 0 {
		c.SpecSearchRoots = []string{
			"./DESIGN-SPEC.md",
			"./design-spec.md",
			"./.claude/DESIGN-SPEC.md",
		}
	}
	if c.ArtifactRoot == "" {
		c.ArtifactRoot = ".canvas/reviews"
	}
	if c.BrowserBinary == "" {
		c.BrowserBinary = "chromium"
	}
	if c.BrowserRemotePort == 0 {
		c.BrowserRemotePort = 9222
	}
	if c.SourceSearchRoot == "" {
		c.SourceSearchRoot = "."
	}
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func saveTo(path string, c *Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadOrInitConfig loads the home config (creating it with defaults if
// absent), then overlays a project-local config file if present.
func LoadOrInitConfig() (*Config, error) {
	homePath, err := getHomeConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := loadFrom(homePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
		setDefaultValues(cfg)
		if err := saveTo(homePath, cfg); err != nil {
			return nil, err
		}
	} else {
		setDefaultValues(cfg)
	}

	if projectCfg, err := loadFrom(getProjectConfigPath()); err == nil {
		cfg = mergeOverride(cfg, projectCfg)
	}

	return cfg, nil
}

// mergeOverride applies any non-zero field from override onto base,
// returning a new Config.
func mergeOverride(base, override *Config) *Config {
	merged := *base
	if override.ViewportWidth != 0 {
		merged.ViewportWidth = override.ViewportWidth
	}
	if override.ViewportHeight != 0 {
		merged.ViewportHeight = override.ViewportHeight
	}
	if override.NavigationTimeout != 0 {
		merged.NavigationTimeout = override.NavigationTimeout
	}
	if override.PixelThreshold != 0 {
		merged.PixelThreshold = override.PixelThreshold
	}
	if override.SSIMThreshold != 0 {
		merged.SSIMThreshold = override.SSIMThreshold
	}
	if len(override.SpecSearchRoots) > 0 {
		merged.SpecSearchRoots = override.SpecSearchRoots
	}
	if override.ArtifactRoot != "" {
		merged.ArtifactRoot = override.ArtifactRoot
	}
	if override.BrowserBinary != "" {
		merged.BrowserBinary = override.BrowserBinary
	}
	if override.BrowserRemotePort != 0 {
		merged.BrowserRemotePort = override.BrowserRemotePort
	}
	if override.SourceSearchRoot != "" {
		merged.SourceSearchRoot = override.SourceSearchRoot
	}
	return &merged
}
