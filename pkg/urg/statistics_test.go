// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"strings"
	"testing"
)

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update([]int{0, 1200, 800, 60000}, 4, 42, nil)
	s.Update(nil, -1, 0, ErrChecksum)
	s.Update(nil, -1, 0, ErrNoResponse)
	s.Update(nil, -1, 0, ErrReceive)
	s.Update(nil, -1, 0, ErrInvalidState)

	if s.TotalScans != 5 || s.ValidScans != 1 {
		t.Errorf("counts = %d/%d, want 5 total 1 valid", s.TotalScans, s.ValidScans)
	}
	if s.ChecksumErrors != 1 || s.Timeouts != 1 || s.ReceiveErrors != 1 || s.StateErrors != 1 {
		t.Errorf("error breakdown = %d/%d/%d/%d",
			s.ChecksumErrors, s.Timeouts, s.ReceiveErrors, s.StateErrors)
	}
	if s.ErrorCount() != 4 {
		t.Errorf("ErrorCount = %d, want 4", s.ErrorCount())
	}

	// Zero readings are dummies and never count as the minimum.
	if s.MinRange != 800 || s.MaxRange != 60000 {
		t.Errorf("range bounds = %d..%d, want 800..60000", s.MinRange, s.MaxRange)
	}
	if s.LastSteps != 4 || s.LastTimestamp != 42 {
		t.Errorf("last scan = %d steps @ %d", s.LastSteps, s.LastTimestamp)
	}

	if !strings.Contains(s.Summary(), "scans=5") {
		t.Errorf("Summary = %q", s.Summary())
	}
}
