// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/codecontext/codecontext-core/internal/output"

// outputJSON pretty-prints data to stdout, the CLI-wide --json convention.
func outputJSON(data any) error {
	return output.JSON(data)
}
