// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show sensor parameters and version",
	Long: `Connect to the sensor and print the parameters discovered with the PP
query plus the firmware version and serial id from VV.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	driver, connInfo, err := OpenDriver()
	if err != nil {
		return err
	}
	defer driver.Close()

	minStep, _ := driver.MinStep()
	maxStep, _ := driver.MaxStep()
	minDist, _ := driver.MinDistance()
	maxDist, _ := driver.MaxDistance()
	scanUsec, _ := driver.ScanUsec()

	fmt.Printf("Connection:       %s\n", connInfo)
	fmt.Printf("Product:          %s\n", driver.ProductType())
	fmt.Printf("Firmware:         %s\n", driver.ProductVersion())
	fmt.Printf("Serial id:        %s\n", driver.SerialID())
	fmt.Printf("Steps:            %d .. %d (front %d, %d/rev)\n",
		minStep, maxStep, driver.FrontStep(), driver.TotalSteps())
	fmt.Printf("Range:            %d .. %d mm\n", minDist, maxDist)
	fmt.Printf("Scan period:      %d us (%.1f Hz)\n",
		scanUsec, 1e6/float64(scanUsec))
	fmt.Printf("State:            %s\n", driver.State())
	return nil
}
