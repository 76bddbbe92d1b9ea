// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON writes records as a pretty-printed JSON array to w, mirroring the
// module's --json output convention (2-space indent, one encode call).
func JSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("format: JSON encoding failed: %w", err)
	}
	return nil
}
