// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad
//
// Urgscan - Hokuyo URG Laser Range Finder Tool
//
// A CLI tool for acquiring and monitoring scans from Hokuyo URG-class
// laser range finders over the SCIP 2.0 protocol.

package main

import (
	"os"

	"github.com/Thermoquad/urgscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
