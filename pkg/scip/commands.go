// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package scip

import "fmt"

// ScanRequest holds the parameters of a Gx/Mx/Hx/Nx scan command.
type ScanRequest struct {
	Type      MeasurementType
	FirstStep int
	LastStep  int
	SkipStep  int

	// Continuous-mode fields; ignored by SingleScanCommand.
	SkipScan  int
	ScanTimes int
}

// commandChars returns the family and encoding characters for a
// measurement type. The single-scan and continuous families share the
// encoding character.
func commandChars(t MeasurementType) (single, continuous, encoding byte) {
	switch t {
	case Distance:
		return SingleScanChar, ContinuousScanChar, ScanTypeDistance
	case DistanceIntensity:
		return SingleScanChar, ContinuousScanChar, ScanTypeIntensity
	case Multiecho:
		return SingleMultiechoChar, ContinuousMultiecho, ScanTypeDistance
	case MultiechoIntensity:
		return SingleMultiechoChar, ContinuousMultiecho, ScanTypeIntensity
	default:
		return 0, 0, 0
	}
}

// SingleScanCommand builds the one-shot form: GD0000108000 style, with
// four-digit first and last steps and a two-digit skip step.
func SingleScanCommand(req ScanRequest) string {
	single, _, encoding := commandChars(req.Type)
	return fmt.Sprintf("%c%c%04d%04d%02d\n",
		single, encoding, req.FirstStep, req.LastStep, req.SkipStep)
}

// ContinuousScanCommand builds the streaming form, which appends a
// one-digit skip-scan count and a two-digit scan count. A scan count of
// zero streams until QT.
func ContinuousScanCommand(req ScanRequest) string {
	_, continuous, encoding := commandChars(req.Type)
	return fmt.Sprintf("%c%c%04d%04d%02d%01d%02d\n",
		continuous, encoding, req.FirstStep, req.LastStep, req.SkipStep,
		req.SkipScan, req.ScanTimes)
}

// BaudrateCommand builds the SS serial speed change command with a
// six-digit zero-padded baudrate.
func BaudrateCommand(baudrate int) string {
	return fmt.Sprintf("SS%06d\n", baudrate)
}
