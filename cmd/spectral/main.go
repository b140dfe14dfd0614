// SPDX-License-Identifier: MIT

// Command spectral builds a distributed tensor-product space on in-process
// ranks and runs transforms over it.
//
//	spectral roundtrip --ranks 4 --shape 16,16,16 --families C2C,C2C,R2C
//	spectral info --config space.yaml
//
// Settings come from flags, SPECTRAL_* environment variables (SPECTRAL_SHAPE,
// SPECTRAL_BC_LEFT, ...) and an optional YAML file, in that order of precedence.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
