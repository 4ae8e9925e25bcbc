// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import "errors"

// Driver error values. Protocol and session failures wrap exactly one of
// these, so callers can classify with errors.Is while What() keeps the
// diagnostic text of the last failure. A transport that fails to open is
// reported with the transport's own error, which wraps none of these.
var (
	ErrNotConnected      = errors.New("sensor is not opened")
	ErrSend              = errors.New("send error")
	ErrReceive           = errors.New("receive error")
	ErrNoResponse        = errors.New("no response")
	ErrInvalidResponse   = errors.New("invalid response")
	ErrChecksum          = errors.New("checksum error")
	ErrNotDetectBaudrate = errors.New("could not connect URG sensor")
	ErrInvalidParameter  = errors.New("invalid command parameter")
	ErrInvalidState      = errors.New("could not measurement in this state")
	ErrNotSupported      = errors.New("not supported by this sensor")
)

// setError records err as the last error and returns it unchanged.
func (d *Driver) setError(err error) error {
	if err != nil {
		d.lastError = err
	}
	return err
}

// What returns the diagnostic text of the last error, or "no error." when
// nothing has failed yet.
func (d *Driver) What() string {
	if d.lastError == nil {
		return "no error."
	}
	return d.lastError.Error() + "."
}
