// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import "github.com/Thermoquad/urgscan/pkg/scip"

// SensorState is the sensor's own account of what it is doing, as
// reported by the %ST query.
type SensorState int

// Sensor states.
const (
	StateUnknown SensorState = iota
	StateBooting
	StateIdle
	StateSleep
	StateWakingUp
	StateTimeAdjustment
	StateSingleScan
	StateMultiScan
	StateLNBooting
	StateLNMeasurement
	StateLNResponding
	StateProductResponding
	StateErrorDetected
	StateFirmwareUpdate
	StateDevelopment
)

// stateCodes maps the %ST response lines to states. LN models report two
// distinct responding codes for the same state.
var stateCodes = []struct {
	state SensorState
	code  string
}{
	{StateIdle, "000 Idle"},
	{StateBooting, "001 Booting"},
	{StateTimeAdjustment, "002 Time_adjustment"},
	{StateSingleScan, "003 Single_scan"},
	{StateMultiScan, "004 Multi_scan"},
	{StateSleep, "005 Sleep"},
	{StateWakingUp, "006 Waking_up"},
	{StateLNBooting, "050 LN_Booting"},
	{StateLNMeasurement, "051 LN_Measurement"},
	{StateLNResponding, "052 LN_Responding"},
	{StateLNResponding, "053 LN_Responding"},
	{StateErrorDetected, "900 Error_detected"},
	{StateFirmwareUpdate, "901 Firmware_update"},
	{StateDevelopment, "902 Development"},
}

// String returns the state name.
func (s SensorState) String() string {
	names := map[SensorState]string{
		StateUnknown:           "unknown",
		StateBooting:           "booting",
		StateIdle:              "idle",
		StateSleep:             "sleep",
		StateWakingUp:          "waking up",
		StateTimeAdjustment:    "time adjustment",
		StateSingleScan:        "single scan",
		StateMultiScan:         "multi scan",
		StateLNBooting:         "LN booting",
		StateLNMeasurement:     "LN measurement",
		StateLNResponding:      "LN responding",
		StateProductResponding: "product responding",
		StateErrorDetected:     "error detected",
		StateFirmwareUpdate:    "firmware update",
		StateDevelopment:       "development",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return "unknown"
}

// State queries the sensor state with %ST. Sensors that predate the
// query return StateUnknown.
func (d *Driver) State() SensorState {
	if !d.IsOpen() {
		d.setError(ErrNotConnected)
		return StateUnknown
	}

	tr, err := d.transact(scip.CmdState, []string{"00"}, d.sensorTimeout, true)
	if err != nil || len(tr.payload) == 0 {
		return StateUnknown
	}

	// The state is the first payload line, checksum and optional
	// semicolon stripped.
	line := tr.payload[0]
	if len(line) > 1 {
		line = line[:len(line)-1]
	}
	if len(line) > 0 && line[len(line)-1] == ';' {
		line = line[:len(line)-1]
	}
	for _, sc := range stateCodes {
		if line == sc.code {
			return sc.state
		}
	}
	return StateUnknown
}

// Sleep stops any running measurement and puts the sensor into its
// low-power state. Any command wakes it again.
func (d *Driver) Sleep() error {
	if !d.IsOpen() {
		return d.setError(ErrNotConnected)
	}
	d.StopMeasurement()
	if _, err := d.transact(scip.CmdSleep, []string{"00"}, d.sensorTimeout, false); err != nil {
		return d.setError(ErrInvalidResponse)
	}
	d.lastError = nil
	return nil
}

// Wakeup returns a sleeping sensor to idle.
func (d *Driver) Wakeup() error {
	return d.StopMeasurement()
}

// Reboot restarts the sensor. The RB command must arrive twice to take
// effect; the session is closed afterwards because the sensor drops the
// link while rebooting.
func (d *Driver) Reboot() error {
	if !d.IsOpen() {
		return d.setError(ErrNotConnected)
	}

	for i := 0; i < 2; i++ {
		if _, err := d.transact(scip.CmdReboot, []string{"00", "01"}, d.sensorTimeout, false); err != nil {
			return d.setError(ErrInvalidResponse)
		}
	}
	d.Close()
	d.lastError = nil
	return nil
}

// SetSensorTimeStamp would adjust the sensor's internal clock via the TM
// commands. The adjustment protocol is not implemented; only timestamp
// extraction from scan blocks is supported.
func (d *Driver) SetSensorTimeStamp(int) error {
	return d.setError(ErrNotSupported)
}
