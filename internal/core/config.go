// Package core holds the router's process-wide configuration and the
// ShouldQuit-style shutdown flag, mirroring the fw/core package in the
// teacher repo (its Config/DefaultConfig and core.ShouldQuit globals).
package core

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// FaceConfig describes one listener the router should bring up at start.
type FaceConfig struct {
	Kind string `yaml:"kind"` // "tcp", "udp", or "ws"
	Bind string `yaml:"bind"`
}

// Config is the router's full static configuration, loaded from a single
// YAML file named on the command line (spec.md §6 "Config: ... loaded from
// a file at startup", SPEC_FULL.md §A.1's documented field list).
type Config struct {
	RouterName string `yaml:"router_name"`

	PitCapacity    int `yaml:"pit_capacity"`
	MaxUDPChildren int `yaml:"max_udp_children"`

	RequestTimeoutMS int `yaml:"request_timeout_ms"`

	Faces []FaceConfig `yaml:"faces"`

	// LocalCommandBind is the address the control-plane UDP socket binds to
	// (spec.md §6 "local_command_port").
	LocalCommandBind string `yaml:"local_command_bind"`

	// ManagerAddress/ManagerPort preconfigure the router's manager_endpoint
	// at startup (spec.md §3 "Router config ... manager_endpoint
	// (optional)"); leaving ManagerAddress empty means no manager is
	// configured until an `edit_config` command sets one at runtime.
	ManagerAddress string `yaml:"manager_address"`
	ManagerPort    uint16 `yaml:"manager_port"`

	// CheckPrefix preconfigures the router's check_prefix flag at startup
	// (spec.md §3); it remains mutable at runtime via `edit_config`.
	CheckPrefix bool `yaml:"check_prefix"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when a field is absent from
// the YAML file (spec.md §3's defaults: 250-entry PIT, 16 max UDP children,
// 5s request timeout).
func DefaultConfig() *Config {
	return &Config{
		RouterName:       "/nrd",
		PitCapacity:      250,
		MaxUDPChildren:   16,
		RequestTimeoutMS: 5000,
		Faces: []FaceConfig{
			{Kind: "tcp", Bind: "0.0.0.0:6363"},
			{Kind: "udp", Bind: "0.0.0.0:6363"},
		},
		LocalCommandBind: "127.0.0.1:6364",
		LogLevel:         "INFO",
	}
}

// LoadConfig reads and merges a YAML config file over DefaultConfig. A
// missing field in path keeps its default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("core: parsing config: %w", err)
	}
	return cfg, nil
}
