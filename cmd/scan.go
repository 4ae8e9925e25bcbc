// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"

	"github.com/Thermoquad/urgscan/pkg/scip"
	"github.com/Thermoquad/urgscan/pkg/urg"
	"github.com/spf13/cobra"
)

var (
	scanType     string
	scanFirst    int
	scanLast     int
	scanSkip     int
	scanSkipScan int
	scanTimes    int
	scanDumpAll  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Acquire scans and print them",
	Long: `Acquire one or more scans and print a per-scan summary, or every step
with --all.

Scan types: distance, intensity (distance+intensity), multiecho,
multiecho-intensity. A scan count of 100 or more streams until Ctrl+C.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanType, "type", "distance", "Scan type")
	scanCmd.Flags().IntVar(&scanFirst, "first", -1, "First step (-1 = sensor minimum)")
	scanCmd.Flags().IntVar(&scanLast, "last", -1, "Last step (-1 = sensor maximum)")
	scanCmd.Flags().IntVar(&scanSkip, "skip", 0, "Steps to group (0 = none)")
	scanCmd.Flags().IntVar(&scanSkipScan, "skip-scan", 0, "Rotations to skip between scans (continuous)")
	scanCmd.Flags().IntVar(&scanTimes, "times", 1, "Number of scans (>=100 = endless)")
	scanCmd.Flags().BoolVar(&scanDumpAll, "all", false, "Print every step, not a summary")
	rootCmd.AddCommand(scanCmd)
}

// parseMeasurementType maps the --type flag to a measurement type.
func parseMeasurementType(s string) (scip.MeasurementType, error) {
	switch s {
	case "distance":
		return scip.Distance, nil
	case "intensity":
		return scip.DistanceIntensity, nil
	case "multiecho":
		return scip.Multiecho, nil
	case "multiecho-intensity":
		return scip.MultiechoIntensity, nil
	}
	return 0, fmt.Errorf("unknown scan type %q", s)
}

func runScan(cmd *cobra.Command, args []string) error {
	applyScanConfig(cmd)

	measurementType, err := parseMeasurementType(scanType)
	if err != nil {
		return err
	}

	driver, connInfo, err := OpenDriver()
	if err != nil {
		return err
	}
	defer driver.Close()

	fmt.Printf("Urgscan - %s (%s)\n", driver.ProductType(), connInfo)

	if err := applyScanRange(driver); err != nil {
		return err
	}

	if err := driver.StartMeasurement(measurementType, scanTimes, scanSkipScan); err != nil {
		return fmt.Errorf("start measurement: %s", driver.What())
	}

	maxData, _ := driver.MaxDataSize()
	maxEcho, _ := driver.MaxEchoSize()
	slots := maxData
	if measurementType.IsMultiecho() {
		slots *= maxEcho
	}
	ranges := make([]int, slots)
	var intensities []uint16
	if measurementType.HasIntensity() {
		intensities = make([]uint16, slots)
	}

	for i := 0; scanTimes >= 100 || i < scanTimes; i++ {
		var timestamp int
		steps, err := receiveScan(driver, measurementType, ranges, intensities, &timestamp)
		if err != nil {
			log.Printf("receive error: %s", driver.What())
			if driver.IsBooting() {
				log.Printf("sensor is still booting, retrying")
				continue
			}
			return err
		}

		printScan(driver, measurementType, ranges, intensities, steps, timestamp)
	}

	return nil
}

// applyScanConfig overlays the config file's scan section onto flags the
// user left at their defaults.
func applyScanConfig(cmd *cobra.Command) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return // reported by OpenDriver
	}

	if !cmd.Flags().Changed("type") && cfg.Scan.Type != "" {
		scanType = cfg.Scan.Type
	}
	if !cmd.Flags().Changed("first") && cfg.Scan.FirstStep >= 0 {
		scanFirst = cfg.Scan.FirstStep
	}
	if !cmd.Flags().Changed("last") && cfg.Scan.LastStep >= 0 {
		scanLast = cfg.Scan.LastStep
	}
	if !cmd.Flags().Changed("skip") {
		scanSkip = cfg.Scan.SkipStep
	}
	if !cmd.Flags().Changed("skip-scan") {
		scanSkipScan = cfg.Scan.SkipScan
	}
	if !cmd.Flags().Changed("times") && cfg.Scan.Times > 0 {
		scanTimes = cfg.Scan.Times
	}
}

// applyScanRange narrows the measured step range if requested.
func applyScanRange(driver *urg.Driver) error {
	if scanFirst < 0 && scanLast < 0 && scanSkip == 0 {
		return nil
	}

	first, last := scanFirst, scanLast
	if first < 0 {
		first, _ = driver.MinStep()
	}
	if last < 0 {
		last, _ = driver.MaxStep()
	}
	if err := driver.SetScanningParameter(first, last, scanSkip); err != nil {
		return fmt.Errorf("invalid scan range %d..%d/%d: %s", first, last, scanSkip, driver.What())
	}
	return nil
}

func receiveScan(driver *urg.Driver, measurementType scip.MeasurementType,
	ranges []int, intensities []uint16, timestamp *int) (int, error) {
	switch measurementType {
	case scip.Distance:
		return driver.GetDistance(ranges, timestamp)
	case scip.DistanceIntensity:
		return driver.GetDistanceIntensity(ranges, intensities, timestamp)
	case scip.Multiecho:
		return driver.GetMultiecho(ranges, timestamp)
	default:
		return driver.GetMultiechoIntensity(ranges, intensities, timestamp)
	}
}

func printScan(driver *urg.Driver, measurementType scip.MeasurementType,
	ranges []int, intensities []uint16, steps, timestamp int) {
	echoes := 1
	if measurementType.IsMultiecho() {
		echoes, _ = driver.MaxEchoSize()
	}

	if !scanDumpAll {
		min, max := rangeBounds(ranges[:steps*echoes])
		fmt.Printf("[%08d] %d steps, range %d..%d mm\n", timestamp, steps, min, max)
		return
	}

	fmt.Printf("# timestamp %d, %d steps\n", timestamp, steps)
	for step := 0; step < steps; step++ {
		deg, _ := driver.Index2Deg(step * echoes)
		fmt.Printf("%4d %8.3f", step, deg)
		for echo := 0; echo < echoes; echo++ {
			index := step*echoes + echo
			fmt.Printf(" %6d", ranges[index])
			if intensities != nil {
				fmt.Printf(":%-5d", intensities[index])
			}
		}
		fmt.Println()
	}
}

// rangeBounds returns the smallest and largest non-zero readings.
func rangeBounds(ranges []int) (int, int) {
	min, max := 0, 0
	for _, r := range ranges {
		if r == 0 {
			continue
		}
		if min == 0 || r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	return min, max
}
