// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"time"

	"github.com/Thermoquad/urgscan/pkg/scip"
)

// stopRetryCount bounds how many residual data blocks StopMeasurement
// absorbs before giving up on the QT acknowledgement.
const stopRetryCount = 6

// StartMeasurement arms scan acquisition. A scanTimes of 0 or ≥100
// streams until StopMeasurement; exactly 1 issues the one-shot command
// family; anything between runs that many scans and stops itself.
// skipScan rotations are skipped between emitted frames in continuous
// mode and must be within [0, 9].
func (d *Driver) StartMeasurement(measurementType scip.MeasurementType, scanTimes, skipScan int) error {
	if !d.IsOpen() {
		return d.setError(ErrNotConnected)
	}

	if skipScan < 0 || skipScan > 9 {
		d.sendQTAndDrain(d.sensorTimeout)
		return d.setError(ErrInvalidParameter)
	}

	switch measurementType {
	case scip.Distance, scip.DistanceIntensity, scip.Multiecho, scip.MultiechoIntensity:
	default:
		return d.setError(ErrInvalidParameter)
	}

	if err := d.sendScanCommand(measurementType, scanTimes, skipScan); err != nil {
		return err
	}

	d.indicated.skipScan = skipScan
	d.measurementType = measurementType
	d.lastError = nil
	return nil
}

func (d *Driver) sendScanCommand(measurementType scip.MeasurementType, scanTimes, skipScan int) error {
	if scanTimes < 0 {
		scanTimes = 0
	}
	if skipScan < 0 {
		skipScan = 0
	}

	d.indicated.scanTimes = scanTimes
	d.remainScanTimes = scanTimes
	d.skipScan = skipScan
	if scanTimes >= 100 {
		// The wire field holds two digits; past 99 the sensor streams
		// until QT. remainScanTimes keeps the requested count, but
		// receiveData only counts down scans for requests of 2..99.
		d.indicated.scanTimes = 0
	}

	req := scip.ScanRequest{
		Type:      measurementType,
		FirstStep: d.indicated.firstStep,
		LastStep:  d.indicated.lastStep,
		SkipStep:  d.indicated.skipStep,
		SkipScan:  skipScan,
		ScanTimes: d.indicated.scanTimes,
	}

	var cmd string
	if d.remainScanTimes == 1 {
		// One-shot commands do not switch the laser on themselves.
		if err := d.turnOnLaser(); err != nil {
			return err
		}
		cmd = scip.SingleScanCommand(req)
	} else {
		cmd = scip.ContinuousScanCommand(req)
		d.isReceiving = true
	}

	n, err := d.conn.Write([]byte(cmd))
	if err != nil || n != len(cmd) {
		return d.setError(ErrSend)
	}
	return nil
}

func (d *Driver) turnOnLaser() error {
	if d.isLaserOn {
		return nil
	}

	if _, err := d.transact(scip.CmdLaserOn, []string{"00", "02"}, d.sensorTimeout, false); err != nil {
		return d.setError(ErrSend)
	}
	d.isLaserOn = true
	return nil
}

// StopMeasurement sends QT and absorbs residual data blocks until the
// acknowledgement arrives, leaving the session idle with the laser off.
func (d *Driver) StopMeasurement() error {
	if !d.IsOpen() {
		return d.setError(ErrNotConnected)
	}

	n, err := d.conn.Write([]byte(scip.CmdQuit))
	if err != nil || n != len(scip.CmdQuit) {
		return d.setError(ErrSend)
	}

	var lastErr error
	for i := 0; i < stopRetryCount; i++ {
		// Data blocks already in flight keep arriving until the QT
		// acknowledgement; read and discard them.
		steps, err := d.receiveData(nil, nil, nil)
		if err == nil && steps == 0 {
			d.isLaserOn = false
			d.isReceiving = false
			d.lastError = nil
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrInvalidResponse
	}
	return d.setError(lastErr)
}

// GetDistance decodes one distance scan block into ranges (one slot per
// step). timestamp, when non-nil, receives the 24-bit sensor clock value.
// Returns the number of steps decoded.
func (d *Driver) GetDistance(ranges []int, timestamp *int) (int, error) {
	return d.getScan(scip.Distance, ranges, nil, timestamp)
}

// GetDistanceIntensity decodes one distance+intensity scan block.
func (d *Driver) GetDistanceIntensity(ranges []int, intensities []uint16, timestamp *int) (int, error) {
	return d.getScan(scip.DistanceIntensity, ranges, intensities, timestamp)
}

// GetMultiecho decodes one multi-echo scan block. Output slots are
// indexed step*MaxEchoes+echo; echoes the sensor omitted are zero.
func (d *Driver) GetMultiecho(ranges []int, timestamp *int) (int, error) {
	return d.getScan(scip.Multiecho, ranges, nil, timestamp)
}

// GetMultiechoIntensity decodes one multi-echo scan block with paired
// intensities.
func (d *Driver) GetMultiechoIntensity(ranges []int, intensities []uint16, timestamp *int) (int, error) {
	return d.getScan(scip.MultiechoIntensity, ranges, intensities, timestamp)
}

func (d *Driver) getScan(measurementType scip.MeasurementType, ranges []int, intensities []uint16, timestamp *int) (int, error) {
	if !d.IsOpen() {
		return -1, d.setError(ErrNotConnected)
	}
	if d.measurementType != measurementType {
		return -1, d.setError(ErrInvalidState)
	}
	return d.receiveData(ranges, intensities, timestamp)
}

// receiveData consumes one response block from a running measurement: the
// echo-back identifying what is actually in flight, the status line, the
// timestamp, then the streamed data lines. A QT echo-back decodes as a
// successful zero-step block. A "00" ack in continuous mode is skipped
// and the following data block decoded instead.
func (d *Driver) receiveData(ranges []int, intensities []uint16, timestamp *int) (int, error) {
	d.isBooting = false

	// Skipped rotations stretch the arrival of the first line.
	extendedTimeout := d.sensorTimeout +
		2*time.Duration(d.sensor.scanUsec*d.indicated.skipScan/1000)*time.Millisecond

	var line [lineBufferSize]byte
	for {
		n, err := readLine(d.conn, line[:], extendedTimeout)
		if err != nil || n <= 0 {
			return -1, d.setError(ErrNoResponse)
		}

		eb := scip.ParseEchoBack(string(line[:n]))
		if eb.Type != scip.Stop {
			d.received = eb
		}

		n, err = readLine(d.conn, line[:], d.sensorTimeout)
		if err != nil || n != scip.StatusLineLen {
			d.sendQTAndDrain(d.sensorTimeout)
			return -1, d.setError(ErrInvalidResponse)
		}
		if !scip.VerifyLine(line[:n]) {
			d.sendQTAndDrain(d.sensorTimeout)
			return -1, d.setError(ErrChecksum)
		}
		status := string(line[:2])

		if eb.Type == scip.Stop {
			// QT acknowledgement: one trailing empty line, zero steps.
			n, err = readLine(d.conn, line[:], d.sensorTimeout)
			if err == nil && n == 0 {
				d.lastError = nil
				return 0, nil
			}
			return -1, d.setError(ErrInvalidResponse)
		}

		if status == "10" {
			// State-not-ready: the sensor is still booting.
			d.isBooting = true
			n, err = readLine(d.conn, line[:], d.sensorTimeout)
			if err != nil || n != 0 {
				d.sendQTAndDrain(d.sensorTimeout)
			}
			return -1, d.setError(ErrInvalidState)
		}

		if d.indicated.scanTimes != 1 && status == "00" {
			// Command acknowledgement of the continuous form, not a
			// data block. Skip its empty line and decode the next
			// block.
			n, err = readLine(d.conn, line[:], d.sensorTimeout)
			if err != nil || n != 0 {
				d.sendQTAndDrain(d.sensorTimeout)
				return -1, d.setError(ErrInvalidResponse)
			}
			continue
		}

		// One-shot blocks carry 00, streamed blocks 99.
		if (d.indicated.scanTimes == 1 && status != "00") ||
			(d.indicated.scanTimes != 1 && status != "99") {
			d.sendQTAndDrain(d.sensorTimeout)
			return -1, d.setError(ErrInvalidResponse)
		}

		n, err = readLine(d.conn, line[:], d.sensorTimeout)
		if err == nil && n >= scip.TimestampBytes && timestamp != nil {
			*timestamp = scip.Decode(line[:scip.TimestampBytes])
		}

		steps, derr := d.receiveScanData(eb, ranges, intensities)

		if d.indicated.scanTimes > 1 && d.remainScanTimes > 0 {
			d.remainScanTimes--
			if d.remainScanTimes <= 0 {
				d.StopMeasurement()
			}
		}

		if derr != nil {
			return -1, derr
		}
		d.lastError = nil
		return steps, nil
	}
}

// receiveScanData streams the data lines of one scan block into the
// output slices. Steps split across line boundaries accumulate in buf; a
// leading '&' marks an additional echo of the previous step. Stops at the
// terminating empty line and returns the number of primary-echo steps.
func (d *Driver) receiveScanData(eb scip.EchoBack, ranges []int, intensities []uint16) (int, error) {
	eachSize := eb.RangeDataBytes
	dataSize := eachSize
	if eb.Type.HasIntensity() {
		dataSize *= 2
	}

	multiechoMaxSize := 1
	d.receivedMultiecho = eb.Type.IsMultiecho()
	if d.receivedMultiecho {
		multiechoMaxSize = scip.MaxEchoes
	}

	timeout := d.sensorTimeout +
		time.Duration(d.skipScan*d.sensor.scanUsec/1000)*time.Millisecond

	stepFilled := 0
	multiechoIndex := 0
	buf := make([]byte, 0, 2*lineBufferSize)

	var line [lineBufferSize]byte
	for {
		n, err := readLine(d.conn, line[:], timeout)
		if err == nil && n > 0 {
			if !scip.VerifyLine(line[:n]) {
				d.sendQTAndDrain(timeout)
				return -1, d.setError(ErrChecksum)
			}
			// Drop the trailing checksum byte.
			buf = append(buf, line[:n-1]...)
		}

		pos := 0
		for len(buf)-pos >= dataSize {
			if buf[pos] == '&' {
				// Continuation echo of the previous step. Wait for
				// more data if the echo body is still incomplete.
				if len(buf)-(pos+1) < dataSize {
					break
				}
				stepFilled--
				multiechoIndex++
				pos++
			} else {
				multiechoIndex = 0
			}

			index := stepFilled*multiechoMaxSize + multiechoIndex

			if stepFilled > eb.LastStep-eb.FirstStep {
				// More steps than the echo-back promised.
				d.sendQTAndDrain(timeout)
				return -1, d.setError(ErrReceive)
			}

			if d.receivedMultiecho && multiechoIndex == 0 {
				// Omitted echoes must read as explicitly absent.
				for i := 1; i < multiechoMaxSize; i++ {
					if index+i < len(ranges) {
						ranges[index+i] = 0
					}
					if index+i < len(intensities) {
						intensities[index+i] = 0
					}
				}
			}

			if index < len(ranges) {
				ranges[index] = scip.Decode(buf[pos : pos+eachSize])
			}
			pos += eachSize

			if eb.Type.HasIntensity() {
				if index < len(intensities) {
					intensities[index] = uint16(scip.Decode(buf[pos : pos+eachSize]))
				}
				pos += eachSize
			}

			stepFilled++
		}

		// Keep the residual tail for the next line.
		buf = buf[:copy(buf, buf[pos:])]

		if err != nil || n == 0 {
			break
		}
	}

	return stepFilled, nil
}
