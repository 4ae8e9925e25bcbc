// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package urg

import (
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// urgDriverNames are the USB driver/product strings URG sensors enumerate
// under. The match is advisory: a port that does not report them may
// still be a sensor behind a generic USB-serial bridge.
var urgDriverNames = []string{
	"URG Series USB Device Driver",
	"URG-X002 USB Device Driver",
}

// hokuyoVendorID is Hokuyo's USB vendor id.
const hokuyoVendorID = "15D1"

// FindPorts lists serial ports with likely URG devices moved to the
// front.
func FindPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}

	replaced := 0
	for i, port := range ports {
		if IsURGPort(port) {
			if i > replaced {
				ports[i], ports[replaced] = ports[replaced], ports[i]
			}
			replaced++
		}
	}
	return ports, nil
}

// IsURGPort reports whether a port enumerates as a Hokuyo URG device.
func IsURGPort(portName string) bool {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return false
	}

	for _, p := range details {
		if p.Name != portName {
			continue
		}
		for _, name := range urgDriverNames {
			if strings.Contains(p.Product, name) {
				return true
			}
		}
		if p.IsUSB && strings.EqualFold(p.VID, hokuyoVendorID) {
			return true
		}
	}
	return false
}
