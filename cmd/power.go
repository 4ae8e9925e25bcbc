// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Put the sensor into its low-power state",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _, err := OpenDriver()
		if err != nil {
			return err
		}
		defer driver.Close()

		if err := driver.Sleep(); err != nil {
			return fmt.Errorf("sleep: %s", driver.What())
		}
		fmt.Println("Sensor is sleeping")
		return nil
	},
}

var wakeupCmd = &cobra.Command{
	Use:   "wakeup",
	Short: "Wake a sleeping sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _, err := OpenDriver()
		if err != nil {
			return err
		}
		defer driver.Close()

		if err := driver.Wakeup(); err != nil {
			return fmt.Errorf("wakeup: %s", driver.What())
		}
		fmt.Println("Sensor is awake")
		return nil
	},
}

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the sensor",
	Long: `Reboot the sensor. The RB command is sent twice as the protocol
requires; the connection drops while the sensor restarts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _, err := OpenDriver()
		if err != nil {
			return err
		}
		defer driver.Close()

		if err := driver.Reboot(); err != nil {
			return fmt.Errorf("reboot: %s", driver.What())
		}
		fmt.Println("Sensor is rebooting")
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Query the sensor state",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _, err := OpenDriver()
		if err != nil {
			return err
		}
		defer driver.Close()

		fmt.Println(driver.State())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(wakeupCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(stateCmd)
}
