// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialConnection drives an RS-232 or USB-CDC attached sensor through
// go.bug.st/serial.
type SerialConnection struct {
	port     serial.Port
	portName string
	baudRate int
	open     bool
	pb       pushback
}

// OpenSerial opens a serial port at the given baudrate with the 8N1
// framing SCIP sensors use.
func OpenSerial(portName string, baudRate int) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialConnection{
		port:     port,
		portName: portName,
		baudRate: baudRate,
		open:     true,
	}, nil
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Read(p []byte, timeout time.Duration) (int, error) {
	if n := s.pb.take(p); n > 0 {
		return n, nil
	}
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	// go.bug.st/serial reports an elapsed timeout as (0, nil), which is
	// exactly the Connection contract.
	return s.port.Read(p)
}

func (s *SerialConnection) UngetByte(b byte) {
	s.pb.unget(b)
}

// ChangeBaudrate reconfigures the host UART. The sensor side is switched
// separately with the SS command before this is called.
func (s *SerialConnection) ChangeBaudrate(baudRate int) error {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if err := s.port.SetMode(mode); err != nil {
		return fmt.Errorf("failed to change baudrate to %d: %w", baudRate, err)
	}
	s.baudRate = baudRate
	return nil
}

func (s *SerialConnection) IsOpen() bool {
	return s.open
}

func (s *SerialConnection) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.port.Close()
}
