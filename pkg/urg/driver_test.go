// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"errors"
	"testing"
	"time"
)

// ============================================================
// Transaction Engine Tests
// ============================================================

func TestTransact_ConsumesExactlyOneBlock(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("BM", "00"))
	fc.enqueue("LEFTOVER") // bytes of a following block must stay unread

	tr, err := d.transact("BM\n", []string{"00"}, time.Second, false)
	if err != nil {
		t.Fatalf("transact failed: %v", err)
	}
	if tr.status != "00P" {
		t.Errorf("status = %q, want 00P", tr.status)
	}
	if fc.remaining() != "LEFTOVER" {
		t.Errorf("transport positioned at %q, want LEFTOVER", fc.remaining())
	}
}

func TestTransact_EchoBackMismatch(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("XX", "00"))

	tr, err := d.transact("BM\n", []string{"00"}, time.Second, false)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
	if tr != nil {
		t.Error("no transaction should be returned on echo mismatch")
	}
}

func TestTransact_UnexpectedStatusConsumed(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("QT", "0E"))
	fc.enqueue("NEXT")

	tr, err := d.transact("QT\n", []string{"00"}, time.Second, false)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
	if tr == nil || tr.status != "0Ee" {
		t.Fatalf("transaction with raw status should be returned, got %+v", tr)
	}
	if fc.remaining() != "NEXT" {
		t.Error("unexpected status must still consume the whole block")
	}
}

func TestTransact_SCIP11StatusAccepted(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue("QT\nE\n\n")

	tr, err := d.transact("QT\n", []string{"00"}, time.Second, false)
	if err != nil {
		t.Fatalf("one-character status should be accepted: %v", err)
	}
	if tr.status != "E" {
		t.Errorf("status = %q, want E", tr.status)
	}
}

func TestTransact_CorruptStatusChecksum(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue("BM\n00X\n\n")

	_, err := d.transact("BM\n", []string{"00"}, time.Second, false)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("err = %v, want ErrChecksum", err)
	}
}

func TestTransact_CorruptPayloadChecksum(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue("PP\n" + checksummed("00") + "DMIN:23;X\n\n")

	_, err := d.transact("PP\n", []string{"00"}, time.Second, true)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("err = %v, want ErrChecksum", err)
	}
}

func TestTransact_NoResponse(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	_, err := d.transact("QT\n", []string{"00"}, time.Millisecond, false)
	if !errors.Is(err, ErrNoResponse) {
		t.Errorf("err = %v, want ErrNoResponse", err)
	}
}

// ============================================================
// Parameter Discovery Tests
// ============================================================

// utm30lxPP is the PP payload of a UTM-30LX.
var utm30lxPP = []string{
	"MODL:UTM-30LX(Hokuyo Automatic Co.,Ltd.);",
	"DMIN:23;",
	"DMAX:60000;",
	"ARES:1440;",
	"AMIN:0;",
	"AMAX:1080;",
	"AFRT:540;",
	"SCAN:2400;",
}

func TestUpdateSensorParameters_UTM30LX(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("PP", "00", utm30lxPP...))

	if err := d.updateSensorParameters(); err != nil {
		t.Fatalf("PP discovery failed: %v (%s)", err, d.What())
	}

	if d.productType != "UTM-30LX" {
		t.Errorf("product = %q, want UTM-30LX", d.productType)
	}
	if d.sensor.minDistance != 23 || d.sensor.maxDistance != 60000 {
		t.Errorf("distance range = %d..%d", d.sensor.minDistance, d.sensor.maxDistance)
	}
	if d.sensor.firstIndex != 0 || d.sensor.lastIndex != 1080 || d.sensor.frontIndex != 540 {
		t.Errorf("indices = %d/%d/%d", d.sensor.firstIndex, d.sensor.lastIndex, d.sensor.frontIndex)
	}
	if d.sensor.areaResolution != 1440 {
		t.Errorf("area resolution = %d", d.sensor.areaResolution)
	}
	if d.sensor.scanUsec != 25000 {
		t.Errorf("scan period = %d us, want 25000", d.sensor.scanUsec)
	}
	if d.sensorTimeout != 390*time.Millisecond {
		t.Errorf("derived timeout = %v, want 390ms", d.sensorTimeout)
	}
	if d.indicated.firstStep != 0 || d.indicated.lastStep != 1080 {
		t.Errorf("scan range not initialized to full range: %d..%d",
			d.indicated.firstStep, d.indicated.lastStep)
	}
}

func TestUpdateSensorParameters_IndicatedTimeoutWins(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)
	d.SetTimeout(500 * time.Millisecond)

	fc.enqueue(block("PP", "00", utm30lxPP...))

	if err := d.updateSensorParameters(); err != nil {
		t.Fatalf("PP discovery failed: %v", err)
	}
	if d.sensorTimeout != 500*time.Millisecond {
		t.Errorf("timeout = %v, want the indicated 500ms", d.sensorTimeout)
	}
}

func TestUpdateSensorParameters_MissingField(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	// SCAN missing, padded so the line count still passes.
	payload := append([]string{}, utm30lxPP[:7]...)
	payload = append(payload, "STAT:Sensor works well;")
	fc.enqueue(block("PP", "00", payload...))

	err := d.updateSensorParameters()
	if !errors.Is(err, ErrReceive) {
		t.Errorf("err = %v, want ErrReceive", err)
	}
}

func TestUpdateSensorParameters_ShortResponse(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("PP", "00", "DMIN:23;", "DMAX:60000;"))

	err := d.updateSensorParameters()
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestUpdateVersionInformation(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("VV", "00",
		"VEND:Hokuyo Automatic Co.,Ltd.;",
		"PROD:SOKUIKI Sensor UTM-30LX;",
		"FIRM:1.16.02(16/Nov./2010);",
		"PROT:SCIP 2.0;",
		"SERI:H0906078;",
	))

	if err := d.updateVersionInformation(); err != nil {
		t.Fatalf("VV failed: %v", err)
	}
	if d.firmwareVersion != "1.16.02" {
		t.Errorf("firmware = %q, want 1.16.02", d.firmwareVersion)
	}
	if d.serialID != "H0906078" {
		t.Errorf("serial = %q, want H0906078", d.serialID)
	}
}

// ============================================================
// Scanning Parameter Tests
// ============================================================

func TestSetScanningParameter(t *testing.T) {
	tests := []struct {
		name    string
		first   int
		last    int
		skip    int
		wantErr bool
	}{
		{name: "full range", first: 0, last: 1080, skip: 0},
		{name: "narrow", first: 100, last: 200, skip: 3},
		{name: "inverted", first: 200, last: 100, wantErr: true},
		{name: "below sensor minimum", first: -5, last: 100, wantErr: true},
		{name: "beyond sensor maximum", first: 0, last: 2000, wantErr: true},
		{name: "skip too large", first: 0, last: 100, skip: 100, wantErr: true},
		{name: "negative skip", first: 0, last: 100, skip: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openTestDriver(newFakeConn(nil))
			err := d.SetScanningParameter(tt.first, tt.last, tt.skip)
			if tt.wantErr && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ============================================================
// Closed Driver Tests
// ============================================================

func TestClosedDriverAccessors(t *testing.T) {
	d := NewDriver()

	if _, err := d.MinStep(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("MinStep err = %v, want ErrNotConnected", err)
	}
	if _, err := d.MaxDistance(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("MaxDistance err = %v, want ErrNotConnected", err)
	}
	if _, err := d.GetDistance(nil, nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("GetDistance err = %v, want ErrNotConnected", err)
	}
	if err := d.StartMeasurement(0, 1, 0); !errors.Is(err, ErrNotConnected) {
		t.Errorf("StartMeasurement err = %v, want ErrNotConnected", err)
	}
	if err := d.StopMeasurement(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("StopMeasurement err = %v, want ErrNotConnected", err)
	}
	if d.ProductType() != "" {
		t.Error("ProductType on a closed driver should be empty")
	}
	if d.What() == "" {
		t.Error("What should describe the failure")
	}
}

// ============================================================
// Angle Conversion Tests
// ============================================================

func TestStepAngleConversions(t *testing.T) {
	d := openTestDriver(newFakeConn(nil))
	d.indicated.firstStep = 0

	// The front step points at zero radians.
	rad, err := d.Step2Rad(540)
	if err != nil {
		t.Fatalf("Step2Rad failed: %v", err)
	}
	if rad != 0 {
		t.Errorf("front step angle = %v rad, want 0", rad)
	}

	// One full quarter of the 1440-step circle away.
	deg, _ := d.Step2Deg(540 + 360)
	if deg < 89.9 || deg > 90.1 {
		t.Errorf("quarter turn = %v deg, want 90", deg)
	}

	// Inverse maps back to the step.
	for _, step := range []int{0, 100, 540, 900, 1080} {
		rad, _ := d.Step2Rad(step)
		back, _ := d.Rad2Step(rad)
		if back != step {
			t.Errorf("Rad2Step(Step2Rad(%d)) = %d", step, back)
		}
	}

	// Out-of-range steps clamp instead of failing.
	if step, _ := d.Rad2Step(100); step != 1080 {
		t.Errorf("huge angle should clamp to last index, got %d", step)
	}
	if step, _ := d.Rad2Step(-100); step != 0 {
		t.Errorf("huge negative angle should clamp to zero, got %d", step)
	}
}

func TestIndexConversions_Multiecho(t *testing.T) {
	d := openTestDriver(newFakeConn(nil))
	d.receivedMultiecho = true

	// Echo slots of one step share the step's angle.
	base, _ := d.Index2Rad(540 * 3)
	for echo := 1; echo < 3; echo++ {
		rad, _ := d.Index2Rad(540*3 + echo)
		if rad != base {
			t.Errorf("echo %d angle = %v, want %v", echo, rad, base)
		}
	}

	index, _ := d.Rad2Index(0)
	if index != 540*3 {
		t.Errorf("Rad2Index(0) = %d, want %d", index, 540*3)
	}
}

// ============================================================
// State Query Tests
// ============================================================

func TestState(t *testing.T) {
	fc := newFakeConn(nil)
	d := openTestDriver(fc)

	fc.enqueue(block("%ST", "00", "000 Idle;"))
	if got := d.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}

	fc.enqueue(block("%ST", "00", "004 Multi_scan;"))
	if got := d.State(); got != StateMultiScan {
		t.Errorf("state = %v, want multi scan", got)
	}

	fc.enqueue(block("%ST", "00", "999 Bogus;"))
	if got := d.State(); got != StateUnknown {
		t.Errorf("state = %v, want unknown", got)
	}
}

func TestSetSensorTimeStamp_Unsupported(t *testing.T) {
	d := openTestDriver(newFakeConn(nil))
	if err := d.SetSensorTimeStamp(0); !errors.Is(err, ErrNotSupported) {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
}
