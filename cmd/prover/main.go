// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command prover checks proof scripts and serves proof sessions over HTTP.
//
// Usage:
//
//	prover check proofs.yaml          # replay every theorem, print the trees
//	prover watch proofs.yaml          # re-check whenever the file changes
//	prover serve --config prover.yaml # HTTP API on :8090
//
// Configuration is read from --config (YAML or JSON) and PROVER_*
// environment variables; see services/prover/config.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
