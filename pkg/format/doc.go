// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package format builds the public result record shape from a retrieve.Hit
// and renders it as either human-readable text or JSON. Both renderers
// share the same Record so a command's --json flag never changes what
// data is available, only how it is printed.
package format
