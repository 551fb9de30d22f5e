// Package config provides the YAML configuration file support for a
// netraven CLI collaborator: scan defaults, named target aliases, and
// named port-list presets. Adapted from the teacher's
// internal/config/config.go (same yaml.v3-via-Defaults-struct shape,
// same search-path/Load/Save pattern), re-purposed from traceroute
// display defaults to scan defaults — see SPEC_FULL.md §4.13. The scan
// engine itself (internal/scan) has zero dependency on this package; it
// exists only for a CLI to load and translate into scan.ScanSetting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the netraven configuration file structure.
type Config struct {
	// Defaults are applied when CLI flags are not specified.
	Defaults Defaults `yaml:"defaults"`

	// Targets maps a short name to a target expression accepted by
	// internal/target.Expand (literal, CIDR, dotted-range, or DNS name).
	Targets map[string]string `yaml:"targets,omitempty"`

	// PortLists maps a preset name to a list of port tokens accepted by
	// internal/target.ExpandPorts ("22", "1-1024", ...).
	PortLists map[string][]string `yaml:"port_lists,omitempty"`
}

// Defaults holds default values for scan parameters.
type Defaults struct {
	// ScanType: icmp_ping, tcp_ping, udp_ping, tcp_connect, tcp_syn.
	ScanType string `yaml:"scan_type"`

	Timeout  time.Duration `yaml:"timeout"`
	WaitTime time.Duration `yaml:"wait_time"`
	SendRate time.Duration `yaml:"send_rate"`

	HostsConcurrency int `yaml:"hosts_concurrency"`
	PortsConcurrency int `yaml:"ports_concurrency"`

	Async bool `yaml:"async"`

	// ServiceDetect enables the post-scan banner-grab pass over ports
	// found Open.
	ServiceDetect ServiceDetectConfig `yaml:"service_detect"`
}

// ServiceDetectConfig mirrors svcdetect.Detector's tunables.
type ServiceDetectConfig struct {
	Enabled            bool          `yaml:"enabled"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	AcceptInvalidCerts bool          `yaml:"accept_invalid_certs"`
}

// DefaultConfig returns a Config with default values, mirroring the
// engine's own defaults in internal/scan so a CLI that skips config
// entirely behaves identically to one that loads this.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			ScanType:         "tcp_connect",
			Timeout:          time.Hour,
			WaitTime:         3 * time.Second,
			HostsConcurrency: 50,
			PortsConcurrency: 100,
			Async:            true,
			ServiceDetect: ServiceDetectConfig{
				Enabled:        false,
				ConnectTimeout: 200 * time.Millisecond,
				ReadTimeout:    5 * time.Second,
			},
		},
		Targets: map[string]string{
			"localhost": "127.0.0.1",
		},
		PortLists: map[string][]string{
			"top10":  {"21", "22", "23", "25", "80", "110", "443", "3306", "3389", "8080"},
			"top100": {"1-1024"},
			"web":    {"80", "443", "8080", "8443"},
		},
	}
}

// Load reads configuration from the default config file locations,
// searching the same working-directory-then-user-config-dir order as the
// teacher's Load:
//  1. ./netraven.yaml (current directory)
//  2. ~/.config/netraven/config.yaml (Linux/macOS)
//  3. %APPDATA%\netraven\config.yaml (Windows)
//
// If no config file is found, returns default configuration.
func Load() (*Config, error) {
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadFrom(path)
		}
	}
	return DefaultConfig(), nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default user config path.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(userConfigDir(), "config.yaml"))
}

// SaveTo writes the configuration to a specific file path.
func (c *Config) SaveTo(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveTarget returns the target expression aliased by name, or name
// itself unchanged if it isn't an alias, so callers can pass either a
// raw target or an alias through the same code path.
func (c *Config) ResolveTarget(name string) string {
	if t, ok := c.Targets[name]; ok {
		return t
	}
	return name
}

// ResolvePorts returns the port tokens for a named preset, or an error
// if name isn't a known preset.
func (c *Config) ResolvePorts(name string) ([]string, error) {
	ports, ok := c.PortLists[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown port list %q", name)
	}
	return ports, nil
}

// appName roots both the working-directory filename variants and the
// per-user config directory name, so the two pieces of search logic below
// can't drift out of sync with each other.
const appName = "netraven"

// cwdConfigNames are the profile filenames checked in the working
// directory, in priority order, before falling back to the per-user
// config directory resolved by userConfigDir.
var cwdConfigNames = []string{
	appName + ".yaml",
	appName + ".yml",
	"." + appName + ".yaml",
	"." + appName + ".yml",
}

// searchPaths returns every location Load checks, in priority order: the
// cwd filename variants, then the resolved per-user config file.
func searchPaths() []string {
	paths := append([]string(nil), cwdConfigNames...)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	return paths
}

// userConfigDir resolves the per-platform directory netraven's own config
// lives under: %APPDATA%\netraven on Windows, $XDG_CONFIG_HOME/netraven or
// ~/.config/netraven elsewhere. Returns "" if the platform gives no usable
// base directory (e.g. HOME unset), matching searchPaths' "skip it" and
// Save's "nothing to create" handling.
func userConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return ""
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName)
	}
	return ""
}

// GetConfigPath returns the path where user config would be saved.
func GetConfigPath() string {
	dir := userConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// GenerateExample generates example configuration file content, printed by
// `netraven config --show`.
func GenerateExample() string {
	return `# netraven Configuration File
# Location: ~/.config/netraven/config.yaml (Linux/macOS)
#           %APPDATA%\netraven\config.yaml (Windows)
#           ./netraven.yaml (current directory)

defaults:
  scan_type: tcp_connect    # icmp_ping, tcp_ping, udp_ping, tcp_connect, tcp_syn
  timeout: 1h               # overall scan deadline
  wait_time: 3s             # grace period after the last probe before draining
  send_rate: 0s             # inter-probe delay; 0 means send as fast as allowed
  hosts_concurrency: 50
  ports_concurrency: 100
  async: true               # bounded concurrent sender vs strictly sequential

  service_detect:
    enabled: false
    connect_timeout: 200ms
    read_timeout: 5s
    accept_invalid_certs: false

# Named target aliases, expanded the same way a raw CLI argument would be
targets:
  localhost: 127.0.0.1
  lan: 192.168.1.0/24

# Named port-list presets
port_lists:
  top10: ["21", "22", "23", "25", "80", "110", "443", "3306", "3389", "8080"]
  top100: ["1-1024"]
  web: ["80", "443", "8080", "8443"]
`
}
