// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"strings"
	"time"

	"github.com/Thermoquad/urgscan/pkg/scip"
)

// ============================================================
// Scripted Connection
// ============================================================

// fakeConn is an in-memory Connection. Written command lines invoke the
// handler, which scripts the sensor's answer by enqueueing bytes; reads
// drain the queue and report an instant timeout once it is empty.
type fakeConn struct {
	queue   []byte
	pos     int
	cmds    []string
	written strings.Builder
	wpart   []byte
	handler func(cmd string)
	bauds   []int
	closed  bool
	pb      pushback
}

func newFakeConn(handler func(cmd string)) *fakeConn {
	return &fakeConn{handler: handler}
}

// enqueue appends raw response bytes for the driver to read.
func (f *fakeConn) enqueue(s string) {
	f.queue = append(f.queue, s...)
}

// remaining returns the unread response bytes, for checking that a
// transaction consumed exactly one block.
func (f *fakeConn) remaining() string {
	return string(f.queue[f.pos:])
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.written.Write(p)
	f.wpart = append(f.wpart, p...)
	for {
		i := strings.IndexByte(string(f.wpart), '\n')
		if i < 0 {
			break
		}
		cmd := string(f.wpart[:i+1])
		f.wpart = f.wpart[i+1:]
		f.cmds = append(f.cmds, cmd)
		if f.handler != nil {
			f.handler(cmd)
		}
	}
	return len(p), nil
}

func (f *fakeConn) Read(p []byte, timeout time.Duration) (int, error) {
	if n := f.pb.take(p); n > 0 {
		return n, nil
	}
	if f.pos >= len(f.queue) {
		return 0, nil // instant timeout
	}
	n := copy(p, f.queue[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeConn) UngetByte(b byte) { f.pb.unget(b) }

func (f *fakeConn) ChangeBaudrate(b int) error {
	f.bauds = append(f.bauds, b)
	return nil
}

func (f *fakeConn) IsOpen() bool { return !f.closed }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// sentCommands returns every full command line written so far.
func (f *fakeConn) sentCommands() []string {
	return f.cmds
}

// ============================================================
// Response Builders
// ============================================================

// checksummed appends the SCIP checksum and LF to a line body.
func checksummed(body string) string {
	return body + string(scip.Checksum([]byte(body))) + "\n"
}

// block assembles echo-back + status + payload bodies + empty terminator.
// The status and payload bodies get checksums appended.
func block(echo, status string, payload ...string) string {
	var b strings.Builder
	b.WriteString(echo + "\n")
	b.WriteString(checksummed(status))
	for _, line := range payload {
		b.WriteString(checksummed(line))
	}
	b.WriteString("\n")
	return b.String()
}

// encodeValues encodes values as consecutive 3-byte SCIP fields.
func encodeValues(values ...int) []byte {
	var out []byte
	for _, v := range values {
		out = append(out, scip.Encode(v, 3)...)
	}
	return out
}

// dataLines splits a scan's data bytes into lines of at most chunk
// bytes, each followed by its checksum and LF, then the terminator.
func dataLines(data []byte, chunk int) string {
	var b strings.Builder
	for len(data) > 0 {
		n := chunk
		if n > len(data) {
			n = len(data)
		}
		line := data[:n]
		data = data[n:]
		b.Write(line)
		b.WriteByte(scip.Checksum(line))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// scanBlock assembles one complete measurement data block.
func scanBlock(echo, status string, timestamp int, data []byte, chunk int) string {
	var b strings.Builder
	b.WriteString(echo + "\n")
	b.WriteString(checksummed(status))
	tsBody := string(scip.Encode(timestamp, scip.TimestampBytes))
	b.WriteString(checksummed(tsBody))
	b.WriteString(dataLines(data, chunk))
	return b.String()
}

// openTestDriver wires a driver directly onto a fake connection with
// UTM-30LX geometry, skipping bootstrap.
func openTestDriver(fc *fakeConn) *Driver {
	d := NewDriver()
	d.conn = fc
	d.ownsConn = false
	d.isReceiving = false
	d.sensor = sensorParameters{
		frontIndex:     540,
		firstIndex:     0,
		lastIndex:      1080,
		areaResolution: 1440,
		scanUsec:       25000,
		minDistance:    23,
		maxDistance:    60000,
	}
	d.indicated.firstStep = 0
	d.indicated.lastStep = 1080
	d.indicated.skipStep = 1
	return d
}
