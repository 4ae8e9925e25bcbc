// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"time"

	"github.com/Thermoquad/urgscan/pkg/scip"
)

// Minimum payload line counts of the parameter and version queries. A
// sensor that answers with fewer lines is not speaking SCIP 2.0.
const (
	minPPLines = 8
	minVVLines = 5
)

// Bits of the mandatory PP fields; discovery fails unless all are seen.
const (
	seenDMIN = 1 << iota
	seenDMAX
	seenARES
	seenAMIN
	seenAMAX
	seenAFRT
	seenSCAN

	seenAll = 0x7f
)

// updateSensorParameters issues PP and fills the immutable sensor
// parameters. The scan timeout defaults to scanUsec/64 milliseconds
// (about 16 scan periods) unless the caller indicated one.
func (d *Driver) updateSensorParameters() error {
	tr, err := d.transact(scip.CmdParameters, []string{"00"}, maxTimeout, true)
	if err != nil {
		return err
	}
	if len(tr.payload) < minPPLines {
		d.sendQTAndDrain(maxTimeout)
		return d.setError(ErrInvalidResponse)
	}

	seen := 0
	for _, line := range tr.payload {
		if v, ok := scip.KeyValue(line, "MODL:"); ok {
			d.productType = scip.StripVendor(v)
		} else if v, ok := scip.KeyNumber(line, "DMIN:"); ok {
			d.sensor.minDistance = v
			seen |= seenDMIN
		} else if v, ok := scip.KeyNumber(line, "DMAX:"); ok {
			d.sensor.maxDistance = v
			seen |= seenDMAX
		} else if v, ok := scip.KeyNumber(line, "ARES:"); ok {
			d.sensor.areaResolution = v
			seen |= seenARES
		} else if v, ok := scip.KeyNumber(line, "AMIN:"); ok {
			d.sensor.firstIndex = v
			seen |= seenAMIN
		} else if v, ok := scip.KeyNumber(line, "AMAX:"); ok {
			d.sensor.lastIndex = v
			seen |= seenAMAX
		} else if v, ok := scip.KeyNumber(line, "AFRT:"); ok {
			d.sensor.frontIndex = v
			seen |= seenAFRT
		} else if rpm, ok := scip.KeyNumber(line, "SCAN:"); ok && rpm > 0 {
			d.sensor.scanUsec = 60 * 1000 * 1000 / rpm
			if d.indicated.timeout > 0 {
				d.sensorTimeout = d.indicated.timeout
			} else {
				// Roughly 16 scan periods, expressed in milliseconds.
				d.sensorTimeout = time.Duration(d.sensor.scanUsec>>(10-4)) * time.Millisecond
			}
			seen |= seenSCAN
		}
	}

	if seen != seenAll {
		return d.setError(ErrReceive)
	}

	d.SetScanningParameter(d.sensor.firstIndex, d.sensor.lastIndex, 1)
	d.lastError = nil
	return nil
}

// updateVersionInformation issues VV and fills the firmware version and
// serial id. Called lazily on first access.
func (d *Driver) updateVersionInformation() error {
	tr, err := d.transact(scip.CmdVersion, []string{"00"}, maxTimeout, true)
	if err != nil {
		return err
	}
	if len(tr.payload) < minVVLines {
		d.sendQTAndDrain(maxTimeout)
		return d.setError(ErrInvalidResponse)
	}

	for _, line := range tr.payload {
		if v, ok := scip.KeyValue(line, "FIRM:"); ok {
			d.firmwareVersion = scip.StripVendor(v)
		} else if v, ok := scip.KeyValue(line, "SERI:"); ok {
			d.serialID = v
		}
	}
	return nil
}

// SetScanningParameter bounds the scan range for subsequent measurements.
// The range must lie within the sensor's step indices and the skip step
// within [0, 99].
func (d *Driver) SetScanningParameter(firstStep, lastStep, skipStep int) error {
	if firstStep > lastStep || firstStep < d.sensor.firstIndex ||
		lastStep > d.sensor.lastIndex || skipStep < 0 || skipStep > 99 {
		return d.setError(ErrInvalidParameter)
	}

	d.indicated.firstStep = firstStep
	d.indicated.lastStep = lastStep
	d.indicated.skipStep = skipStep
	return nil
}

// MinStep returns the smallest valid step index.
func (d *Driver) MinStep() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.firstIndex, nil
}

// MaxStep returns the largest valid step index.
func (d *Driver) MaxStep() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.lastIndex, nil
}

// FrontStep returns the step index on the sensor's forward axis.
func (d *Driver) FrontStep() int {
	return d.sensor.frontIndex
}

// TotalSteps returns the angular resolution: steps per full revolution.
func (d *Driver) TotalSteps() int {
	return d.sensor.areaResolution
}

// MinDistance returns the shortest measurable range in millimeters.
func (d *Driver) MinDistance() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.minDistance, nil
}

// MaxDistance returns the longest measurable range in millimeters.
func (d *Driver) MaxDistance() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.maxDistance, nil
}

// ScanUsec returns the duration of one full revolution in microseconds.
func (d *Driver) ScanUsec() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.scanUsec, nil
}

// MaxDataSize returns the number of step slots a caller buffer needs for
// a single-echo scan.
func (d *Driver) MaxDataSize() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return d.sensor.lastIndex + 1, nil
}

// MaxEchoSize returns the echo slots per step in multi-echo modes.
func (d *Driver) MaxEchoSize() (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	return scip.MaxEchoes, nil
}

// ProductType returns the MODL value discovered at open, vendor suffix
// stripped. Empty when closed.
func (d *Driver) ProductType() string {
	if !d.IsOpen() {
		return ""
	}
	return d.productType
}

// ProductVersion returns the FIRM value, fetching VV on first use.
func (d *Driver) ProductVersion() string {
	if !d.IsOpen() {
		return ""
	}
	if d.firmwareVersion == "" {
		d.updateVersionInformation()
	}
	return d.firmwareVersion
}

// SerialID returns the SERI value, fetching VV on first use.
func (d *Driver) SerialID() string {
	if !d.IsOpen() {
		return ""
	}
	if d.serialID == "" {
		d.updateVersionInformation()
	}
	return d.serialID
}
