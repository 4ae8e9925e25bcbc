// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package scip

import (
	"strconv"
	"strings"
)

// KeyValue extracts the value of a "KEY:value;checksum" payload line if it
// carries the given key prefix. The prefix includes the colon, e.g.
// "DMIN:". The two trailing bytes (semicolon and checksum) are dropped.
func KeyValue(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	v := line[len(prefix):]
	if len(v) < 2 {
		return "", false
	}
	return v[:len(v)-2], true
}

// KeyNumber extracts a numeric payload value under the given key prefix.
func KeyNumber(line, prefix string) (int, bool) {
	v, ok := KeyValue(line, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// StripVendor removes a trailing "(vendor)" subfield from MODL and FIRM
// values.
func StripVendor(value string) string {
	if i := strings.IndexByte(value, '('); i >= 0 {
		return value[:i]
	}
	return value
}
