// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks scan throughput and error rates for a running
// measurement session.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalScans     uint64
	ValidScans     uint64
	ChecksumErrors uint64
	Timeouts       uint64
	ReceiveErrors  uint64
	StateErrors    uint64

	// Last-scan snapshot
	LastSteps     int
	LastTimestamp int
	MinRange      int
	MaxRange      int

	// Rates (calculated)
	ScanRate  float64 // scans/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one receive attempt and its outcome.
func (s *Statistics) Update(ranges []int, steps int, timestamp int, err error) {
	s.TotalScans++

	switch {
	case err == nil:
		s.ValidScans++
		s.LastSteps = steps
		s.LastTimestamp = timestamp
		s.updateRangeBounds(ranges, steps)
	case errors.Is(err, ErrChecksum):
		s.ChecksumErrors++
	case errors.Is(err, ErrNoResponse):
		s.Timeouts++
	case errors.Is(err, ErrInvalidState):
		s.StateErrors++
	default:
		s.ReceiveErrors++
	}

	s.UpdateRates()
}

func (s *Statistics) updateRangeBounds(ranges []int, steps int) {
	if steps > len(ranges) {
		steps = len(ranges)
	}
	s.MinRange = 0
	s.MaxRange = 0
	for _, r := range ranges[:steps] {
		if r == 0 {
			// Dummy readings (too near, too far, omitted echo).
			continue
		}
		if s.MinRange == 0 || r < s.MinRange {
			s.MinRange = r
		}
		if r > s.MaxRange {
			s.MaxRange = r
		}
	}
}

// UpdateRates recalculates the throughput rates.
func (s *Statistics) UpdateRates() {
	s.LastUpdateTime = time.Now()
	elapsed := s.LastUpdateTime.Sub(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.ScanRate = float64(s.ValidScans) / elapsed
	s.ErrorRate = float64(s.TotalScans-s.ValidScans) / elapsed
}

// ErrorCount returns the total number of failed receives.
func (s *Statistics) ErrorCount() uint64 {
	return s.TotalScans - s.ValidScans
}

// Summary returns a one-line textual summary.
func (s *Statistics) Summary() string {
	return fmt.Sprintf("scans=%d valid=%d errors=%d rate=%.1f/s",
		s.TotalScans, s.ValidScans, s.ErrorCount(), s.ScanRate)
}
