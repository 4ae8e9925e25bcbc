// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// tcpDialTimeout bounds the initial connect; Ethernet sensors answer
// within a scan period once the link is up.
const tcpDialTimeout = 10 * time.Second

// TCPConnection drives an Ethernet sensor. The sensor-side line speed is
// fixed at 115200 regardless of the TCP port, so ChangeBaudrate is a
// no-op here.
type TCPConnection struct {
	conn net.Conn
	addr string
	open bool
	pb   pushback
}

// OpenTCP connects to an Ethernet sensor at address ("host:port",
// conventionally port 10940).
func OpenTCP(address string) (*TCPConnection, error) {
	conn, err := net.DialTimeout("tcp", address, tcpDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return &TCPConnection{conn: conn, addr: address, open: true}, nil
}

func (t *TCPConnection) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *TCPConnection) Read(p []byte, timeout time.Duration) (int, error) {
	if n := t.pb.take(p); n > 0 {
		return n, nil
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return n, nil
	}
	return n, err
}

func (t *TCPConnection) UngetByte(b byte) {
	t.pb.unget(b)
}

func (t *TCPConnection) ChangeBaudrate(int) error {
	return nil
}

func (t *TCPConnection) IsOpen() bool {
	return t.open
}

func (t *TCPConnection) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	return t.conn.Close()
}
