// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import "time"

// readLine reads one SCIP line (terminated by a single LF) into buf and
// returns the payload length with the LF stripped. An empty line returns
// (0, nil). A timeout before the terminator returns ErrNoResponse; the
// protocol guarantees complete lines, so a partial line is no response.
// Bytes beyond the buffer are discarded and reported as ErrReceive.
func readLine(conn Connection, buf []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	filled := 0
	overflow := false

	one := make([]byte, 1)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, ErrNoResponse
		}

		n, err := conn.Read(one, remaining)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, ErrNoResponse
		}

		if one[0] == '\n' {
			if overflow {
				return filled, ErrReceive
			}
			return filled, nil
		}

		if filled >= len(buf) {
			overflow = true
			continue
		}
		buf[filled] = one[0]
		filled++
	}
}

// drain reads and discards whatever the sensor is still sending until the
// line goes quiet for timeout.
func drain(conn Connection, timeout time.Duration) {
	scratch := make([]byte, 64)
	for {
		n, err := conn.Read(scratch, timeout)
		if n <= 0 || err != nil {
			return
		}
	}
}
