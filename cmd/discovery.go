// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/urgscan/pkg/urg"
	"github.com/spf13/cobra"
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "List serial ports, URG sensors first",
	Long: `List the serial ports on this machine. Ports whose USB enumeration
identifies a Hokuyo URG device are listed first and marked. The match is
advisory: sensors behind generic USB-serial bridges are not recognized.`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	ports, err := urg.FindPorts()
	if err != nil {
		return fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, port := range ports {
		if urg.IsURGPort(port) {
			fmt.Printf("%s  [URG]\n", port)
		} else {
			fmt.Println(port)
		}
	}
	return nil
}
