// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/urgscan/pkg/urg"
	"golang.org/x/term"
)

// GetPassword retrieves the WebSocket password from the environment or
// prompts the user without echo.
func GetPassword() (string, error) {
	if pw := os.Getenv("URGSCAN_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenDriver connects to the sensor selected by flags or config and
// returns an open driver plus a human-readable connection description.
func OpenDriver() (*urg.Driver, string, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	cfg.applyFlags()

	driver := urg.NewDriver()
	if cfg.Connection.TimeoutMs > 0 {
		driver.SetTimeout(time.Duration(cfg.Connection.TimeoutMs) * time.Millisecond)
	}

	conn := cfg.Connection
	switch {
	case conn.URL != "":
		password := ""
		if conn.Username != "" {
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}
		if err := driver.OpenWebSocket(conn.URL, conn.Username, password, wsNoSSLVerify); err != nil {
			return nil, "", fmt.Errorf("%s (%s)", driver.What(), conn.URL)
		}
		return driver, fmt.Sprintf("WebSocket: %s", conn.URL), nil

	case conn.TCP != "":
		if err := driver.OpenTCP(conn.TCP); err != nil {
			return nil, "", fmt.Errorf("%s (%s)", driver.What(), conn.TCP)
		}
		return driver, fmt.Sprintf("Ethernet: %s", conn.TCP), nil

	case conn.Port != "":
		if err := driver.OpenSerial(conn.Port, conn.BaudRate); err != nil {
			return nil, "", fmt.Errorf("%s (%s)", driver.What(), conn.Port)
		}
		return driver, fmt.Sprintf("Serial: %s @ %d baud", conn.Port, conn.BaudRate), nil
	}

	return nil, "", fmt.Errorf("either --port, --tcp, or --url must be specified")
}
