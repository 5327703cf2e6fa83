// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/adonde/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
