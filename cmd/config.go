// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds connection and scan defaults loaded from a YAML file.
// Command-line flags win over file values.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Scan       ScanConfig       `yaml:"scan"`
}

type ConnectionConfig struct {
	Port      string `yaml:"port"`       // e.g. /dev/ttyACM0
	BaudRate  int    `yaml:"baud_rate"`  // serial only
	TCP       string `yaml:"tcp"`        // e.g. 192.168.0.10:10940
	URL       string `yaml:"url"`        // ws:// or wss:// bridge
	Username  string `yaml:"username"`   // WebSocket basic auth
	TimeoutMs int    `yaml:"timeout_ms"` // 0 = derive from scan period
}

type ScanConfig struct {
	Type      string `yaml:"type"` // distance, intensity, multiecho, multiecho-intensity
	FirstStep int    `yaml:"first_step"`
	LastStep  int    `yaml:"last_step"`
	SkipStep  int    `yaml:"skip_step"`
	SkipScan  int    `yaml:"skip_scan"`
	Times     int    `yaml:"times"`
}

// DefaultConfig returns a config with the scan range left at the full
// sensor range (negative markers are replaced after discovery).
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			BaudRate: 115200,
		},
		Scan: ScanConfig{
			Type:      "distance",
			FirstStep: -1,
			LastStep:  -1,
			Times:     1,
		},
	}
}

// LoadConfig reads a YAML config file. A missing path returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags overlays explicitly-set command-line flags onto the config.
func (c *Config) applyFlags() {
	if portName != "" {
		c.Connection.Port = portName
		c.Connection.BaudRate = baudRate
	}
	if tcpAddress != "" {
		c.Connection.TCP = tcpAddress
	}
	if wsURL != "" {
		c.Connection.URL = wsURL
		c.Connection.Username = wsUsername
	}
	if timeoutMs > 0 {
		c.Connection.TimeoutMs = timeoutMs
	}
}
