// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import "context"

// InstructionType is the closed set of asymmetric encoding instructions a
// Provider accepts.
type InstructionType string

const (
	NL2CodeQuery    InstructionType = "NL2CODE_QUERY"
	NL2CodePassage  InstructionType = "NL2CODE_PASSAGE"
	Code2CodeQuery  InstructionType = "CODE2CODE_QUERY"
	Code2CodePassage InstructionType = "CODE2CODE_PASSAGE"
	QAQuery         InstructionType = "QA_QUERY"
	QAPassage       InstructionType = "QA_PASSAGE"
	DocumentPassage InstructionType = "DOCUMENT_PASSAGE"
)

// Provider is the contract every embedding backend satisfies.
type Provider interface {
	// Embed returns one vector per text, in the same order as texts, even
	// if the implementation reorders internally (e.g. batching by length
	// for throughput).
	Embed(ctx context.Context, texts []string, instruction InstructionType) ([][]float32, error)

	// Dimension returns the fixed vector length this provider produces.
	Dimension() int

	// BatchSize returns this provider's preferred request batch size.
	BatchSize() int

	// Close releases any resources (connections, file handles) held by
	// the provider.
	Close() error
}
