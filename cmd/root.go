// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// TCP connection flags
	tcpAddress string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Config file
	configPath string

	// Receive timeout override, milliseconds (0 = derive from the
	// sensor's scan period)
	timeoutMs int
)

var rootCmd = &cobra.Command{
	Use:   "urgscan",
	Short: "Hokuyo URG Laser Range Finder Tool",
	Long: `Urgscan - A CLI tool for Hokuyo URG-class laser range finders (SCIP 2.0).

Connects to a sensor over serial, TCP, or a serial-over-WebSocket bridge,
discovers its parameters, and acquires distance, intensity, and multi-echo
scans.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  Ethernet:  --tcp 192.168.0.10:10940
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the URGSCAN_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// TCP connection flags
	rootCmd.PersistentFlags().StringVarP(&tcpAddress, "tcp", "t", "", "Ethernet sensor address (host:port)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Misc
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 0, "Receive timeout in ms (0 = derive from scan period)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
