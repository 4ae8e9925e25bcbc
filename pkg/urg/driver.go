// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Package urg implements a session driver for Hokuyo URG-class laser
// range finders speaking SCIP 2.0 over serial, TCP, or a WebSocket
// bridge.
//
// A Driver begins closed. One of the Open variants acquires a transport,
// probes the sensor across candidate baudrates until it answers, brings
// it into a clean SCIP 2.0 idle session, and reads its parameters.
// StartMeasurement begins scan acquisition; the Get functions decode one
// scan block each; StopMeasurement drains back to idle, and Close
// releases the transport without draining.
package urg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/urgscan/pkg/scip"
)

const (
	// maxTimeout is the probe timeout used before the sensor's scan
	// period is known.
	maxTimeout = 140 * time.Millisecond

	// lineBufferSize fits the longest SCIP line the protocol produces.
	lineBufferSize = scip.MaxLineSize
)

// tryBaudrates are the host baudrates probed during bootstrap, reordered
// so the caller's requested rate is tried first.
var tryBaudrates = []int{19200, 38400, 115200}

// sensorParameters is the immutable result of PP discovery.
type sensorParameters struct {
	frontIndex     int
	firstIndex     int
	lastIndex      int
	areaResolution int
	scanUsec       int
	minDistance    int
	maxDistance    int
}

// indicatedSettings are the caller-chosen scan settings.
type indicatedSettings struct {
	firstStep int
	lastStep  int
	skipStep  int
	skipScan  int
	scanTimes int
	timeout   time.Duration
}

// Driver is one SCIP 2.0 session over one transport. It is not safe for
// concurrent use; all I/O happens inline on the caller's goroutine.
type Driver struct {
	conn     Connection
	ownsConn bool

	lastError     error
	sensorTimeout time.Duration
	isReceiving   bool
	isLaserOn     bool

	remainScanTimes int
	skipScan        int
	measurementType scip.MeasurementType

	sensor    sensorParameters
	indicated indicatedSettings
	received  scip.EchoBack
	// receivedMultiecho tracks whether the last decoded scan block was a
	// multi-echo block; index conversions depend on it.
	receivedMultiecho bool

	productType     string
	firmwareVersion string
	serialID        string

	isBooting bool
}

// NewDriver returns a closed driver.
func NewDriver() *Driver {
	return &Driver{
		sensorTimeout: maxTimeout,
		isReceiving:   true,
	}
}

// OpenSerial connects through an RS-232 or USB serial port and brings the
// sensor to a clean SCIP 2.0 session at baudrate.
func (d *Driver) OpenSerial(portName string, baudrate int) error {
	d.Close()

	conn, err := OpenSerial(portName, baudrate)
	if err != nil {
		d.lastError = err
		return err
	}
	return d.open(conn, true, baudrate)
}

// OpenTCP connects to an Ethernet sensor. The sensor-side baudrate of an
// Ethernet model is fixed at 115200 regardless of the TCP port.
func (d *Driver) OpenTCP(address string) error {
	d.Close()

	conn, err := OpenTCP(address)
	if err != nil {
		d.lastError = err
		return err
	}
	return d.open(conn, true, 115200)
}

// OpenWebSocket connects through a serial-over-WebSocket bridge.
func (d *Driver) OpenWebSocket(wsURL, username, password string, skipSSLVerify bool) error {
	d.Close()

	conn, err := OpenWebSocket(wsURL, username, password, skipSSLVerify)
	if err != nil {
		d.lastError = err
		return err
	}
	return d.open(conn, true, 115200)
}

// OpenConnection runs the session over a caller-supplied transport.
// Ownership is not transferred: Close leaves the transport open.
func (d *Driver) OpenConnection(conn Connection, baudrate int) error {
	d.Close()
	return d.open(conn, false, baudrate)
}

func (d *Driver) open(conn Connection, owned bool, baudrate int) error {
	d.conn = conn
	d.ownsConn = owned

	if err := d.connectDevice(baudrate); err != nil {
		d.Close()
		return err
	}
	if err := d.updateSensorParameters(); err != nil {
		d.Close()
		return err
	}
	return nil
}

// Close drains nothing and releases the transport if the driver owns it.
// Safe to call on a closed driver.
func (d *Driver) Close() {
	if d.conn != nil && d.ownsConn {
		d.conn.Close()
	}
	d.conn = nil
	d.ownsConn = false
	d.productType = ""
	d.firmwareVersion = ""
	d.serialID = ""
	d.isLaserOn = false
	d.isReceiving = true
}

// IsOpen reports whether the session is usable.
func (d *Driver) IsOpen() bool {
	return d.conn != nil && d.conn.IsOpen()
}

// IsBooting reports whether the sensor answered state-not-ready ("10") on
// the last receive.
func (d *Driver) IsBooting() bool {
	return d.isBooting
}

// SetTimeout overrides the derived per-line receive timeout.
func (d *Driver) SetTimeout(timeout time.Duration) {
	d.indicated.timeout = timeout
	d.sensorTimeout = timeout
}

// transaction is one consumed SCIP response block.
type transaction struct {
	// status is the raw status line: three bytes for SCIP 2.0 (two-digit
	// code plus checksum), one byte for a SCIP 1.1 sensor.
	status string
	// payload holds the lines between the status and the terminating
	// empty line, checksums still attached.
	payload []string
}

// statusCode returns the two-digit status code of a SCIP 2.0 status line.
func (t *transaction) statusCode() string {
	if len(t.status) >= 2 {
		return t.status[:2]
	}
	return t.status
}

// transact writes cmd verbatim and consumes exactly one response block:
// echo-back, status, payload lines, empty terminator. The echo-back must
// match cmd; every status and payload line must pass the checksum test;
// the status code must be in expected. A status code outside expected
// still consumes the whole block and returns the transaction alongside
// ErrInvalidResponse, so bootstrap can branch on the sensor's answer.
func (d *Driver) transact(cmd string, expected []string, timeout time.Duration, wantPayload bool) (*transaction, error) {
	n, err := d.conn.Write([]byte(cmd))
	if err != nil || n != len(cmd) {
		return nil, d.setError(ErrSend)
	}

	echo := strings.TrimSuffix(cmd, "\n")
	tr := &transaction{}
	statusOK := false

	var line [lineBufferSize]byte
	for lineNumber := 0; ; lineNumber++ {
		n, err := readLine(d.conn, line[:], timeout)
		if err != nil {
			return nil, d.setError(ErrNoResponse)
		}

		switch {
		case lineNumber == 0:
			// Echo-back must repeat the command.
			if !strings.HasPrefix(string(line[:n]), echo) {
				return nil, d.setError(ErrInvalidResponse)
			}

		case lineNumber == 1:
			tr.status = string(line[:n])
			switch {
			case n == 1:
				// SCIP 1.1 sensors answer with a single status
				// character; accepted as success so bootstrap can
				// switch them to 2.0.
				statusOK = true
			case n != scip.StatusLineLen:
				return nil, d.setError(ErrInvalidResponse)
			default:
				if !scip.VerifyLine(line[:n]) {
					return nil, d.setError(ErrChecksum)
				}
				code := tr.statusCode()
				for _, want := range expected {
					if code == want {
						statusOK = true
						break
					}
				}
			}

		case n > 0:
			if !scip.VerifyLine(line[:n]) {
				return nil, d.setError(ErrChecksum)
			}
			if wantPayload {
				tr.payload = append(tr.payload, string(line[:n]))
			}
		}

		if lineNumber > 0 && n == 0 {
			break
		}
	}

	d.isReceiving = false
	if !statusOK {
		return tr, d.setError(fmt.Errorf("%w: status %q", ErrInvalidResponse, tr.status))
	}
	return tr, nil
}

// connectDevice brings the sensor from any plausible prior state into a
// clean SCIP 2.0 idle session at the requested baudrate. Each candidate
// host baudrate is probed with QT; the shape of the answer reveals
// whether the sensor is idle, speaking SCIP 1.1, stuck in time-adjust
// mode, or mid-stream.
func (d *Driver) connectDevice(baudrate int) error {
	candidates := make([]int, len(tryBaudrates))
	copy(candidates, tryBaudrates)
	for i, b := range candidates {
		if b == baudrate {
			candidates[0], candidates[i] = candidates[i], candidates[0]
			break
		}
	}

	for _, baud := range candidates {
		d.conn.ChangeBaudrate(baud)

		tr, err := d.transact(scip.CmdQuit, []string{"00"}, maxTimeout, false)
		if err == nil {
			switch tr.status {
			case "E":
				// SCIP 1.1 answer: skip the trailing newline, switch
				// the sensor to 2.0, then set the target baudrate.
				drain(d.conn, maxTimeout)
				d.transact(scip.CmdSCIP20, []string{"00"}, maxTimeout, false)
				drain(d.conn, maxTimeout)
				return d.changeSensorBaudrate(baud, baudrate)

			default:
				// "00P": already an idle SCIP 2.0 session.
				return d.changeSensorBaudrate(baud, baudrate)
			}
		}

		if tr != nil && strings.HasPrefix(tr.status, "0E") {
			// "0Ee": time-adjust mode left over from a crashed host.
			d.transact(scip.CmdLeaveTM, []string{"00"}, maxTimeout, false)
			return d.changeSensorBaudrate(baud, baudrate)
		}

		if tr == nil && errors.Is(err, ErrInvalidResponse) {
			// Garbage where the echo-back should be: the sensor is
			// mid-stream emitting range data. Stop it and drain.
			d.isReceiving = true
			d.sendQTAndDrain(maxTimeout)
			return d.changeSensorBaudrate(baud, baudrate)
		}

		// No response at this baudrate; settle the line and try the
		// next candidate.
		drain(d.conn, maxTimeout)
	}

	return d.setError(ErrNotDetectBaudrate)
}

// changeSensorBaudrate moves the sensor and then the host from current to
// next with the SS command. Ethernet models answer 0F because their line
// speed is fixed; that counts as success.
func (d *Driver) changeSensorBaudrate(current, next int) error {
	if current == next {
		d.lastError = nil
		return nil
	}

	tr, err := d.transact(scip.BaudrateCommand(next), []string{"00", "03", "04"}, d.sensorTimeout, false)
	if err != nil {
		if tr != nil && strings.HasPrefix(tr.status, "0F") {
			d.lastError = nil
			return nil
		}
		return d.setError(ErrInvalidParameter)
	}

	if err := d.conn.ChangeBaudrate(next); err != nil {
		return d.setError(fmt.Errorf("%w: %v", ErrInvalidParameter, err))
	}

	// Give the sensor one timeout interval to reconfigure its UART.
	drain(d.conn, maxTimeout)
	d.lastError = nil
	return nil
}

// sendQTAndDrain stops a streaming sensor and discards whatever is still
// in flight. A no-op unless a streaming response is outstanding.
func (d *Driver) sendQTAndDrain(timeout time.Duration) {
	if !d.isReceiving {
		return
	}
	d.conn.Write([]byte(scip.CmdQuit))
	drain(d.conn, timeout)
	d.isReceiving = false
}
