// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"math"

	"github.com/Thermoquad/urgscan/pkg/scip"
)

// Step and angle conversions. The sensor's areaResolution steps span one
// full revolution; the front step points along the forward axis at zero
// radians. Steps are clamped into the sensor's valid range, so these
// never fail once the driver is open.

// Step2Rad converts a step index to its angle in radians.
func (d *Driver) Step2Rad(step int) (float64, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}

	actual := clampInt(step, 0, d.sensor.lastIndex)
	index := actual - d.sensor.frontIndex + d.indicated.firstStep
	return 2 * math.Pi * float64(index) / float64(d.sensor.areaResolution), nil
}

// Step2Deg converts a step index to its angle in degrees.
func (d *Driver) Step2Deg(step int) (float64, error) {
	rad, err := d.Step2Rad(step)
	if err != nil {
		return -1, err
	}
	return rad * 180 / math.Pi, nil
}

// Rad2Step converts an angle in radians to the nearest step index,
// clamped into the sensor's range.
func (d *Driver) Rad2Step(radian float64) (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}

	step := int(math.Floor(float64(d.sensor.areaResolution)*radian/(2*math.Pi)+0.5)) +
		d.sensor.frontIndex - d.indicated.firstStep
	return clampInt(step, 0, d.sensor.lastIndex), nil
}

// Deg2Step converts an angle in degrees to the nearest step index.
func (d *Driver) Deg2Step(degree float64) (int, error) {
	return d.Rad2Step(degree * math.Pi / 180)
}

// Index2Rad converts a data array index to an angle. In multi-echo modes
// the array carries MaxEchoes slots per step, so the index is first
// collapsed to its step.
func (d *Driver) Index2Rad(index int) (float64, error) {
	if d.receivedMultiecho {
		index /= scip.MaxEchoes
	}
	return d.Step2Rad(index)
}

// Index2Deg converts a data array index to an angle in degrees.
func (d *Driver) Index2Deg(index int) (float64, error) {
	rad, err := d.Index2Rad(index)
	if err != nil {
		return -1, err
	}
	return rad * 180 / math.Pi, nil
}

// Rad2Index converts an angle to a data array index, accounting for
// multi-echo slot width.
func (d *Driver) Rad2Index(radian float64) (int, error) {
	step, err := d.Rad2Step(radian)
	if err != nil {
		return -1, err
	}
	if d.receivedMultiecho {
		step *= scip.MaxEchoes
	}
	return step, nil
}

// Deg2Index converts an angle in degrees to a data array index.
func (d *Driver) Deg2Index(degree float64) (int, error) {
	return d.Rad2Index(degree * math.Pi / 180)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
