// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urgscan.yaml")
	data := `
connection:
  port: /dev/ttyACM0
  baud_rate: 19200
  timeout_ms: 250
scan:
  type: multiecho
  first_step: 100
  last_step: 900
  times: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Connection.Port != "/dev/ttyACM0" || cfg.Connection.BaudRate != 19200 {
		t.Errorf("connection = %+v", cfg.Connection)
	}
	if cfg.Connection.TimeoutMs != 250 {
		t.Errorf("timeout = %d", cfg.Connection.TimeoutMs)
	}
	if cfg.Scan.Type != "multiecho" || cfg.Scan.FirstStep != 100 || cfg.Scan.LastStep != 900 {
		t.Errorf("scan = %+v", cfg.Scan)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Connection.BaudRate != 115200 {
		t.Errorf("default baud = %d", cfg.Connection.BaudRate)
	}
	if cfg.Scan.Type != "distance" || cfg.Scan.Times != 1 {
		t.Errorf("scan defaults = %+v", cfg.Scan)
	}
}

func TestParseMeasurementType(t *testing.T) {
	for _, name := range []string{"distance", "intensity", "multiecho", "multiecho-intensity"} {
		if _, err := parseMeasurementType(name); err != nil {
			t.Errorf("%s rejected: %v", name, err)
		}
	}
	if _, err := parseMeasurementType("sonar"); err == nil {
		t.Error("unknown type accepted")
	}
}
