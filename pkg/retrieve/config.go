// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package retrieve

import "github.com/codecontext/codecontext-core/pkg/codeobject"

// Config tunes the five-stage pipeline. Every field defaults to the values
// DefaultConfig returns.
type Config struct {
	// ExpandGraph enables Stage 3 (1-hop graph expansion). On by default.
	ExpandGraph bool

	// GraphScoreWeight is alpha: the fraction of a candidate's score
	// propagated to each 1-hop neighbor.
	GraphScoreWeight float64

	// GraphPPRThreshold discards any post-expansion candidate whose score,
	// normalized to [0, 1] against the maximum possible fused score, falls
	// below this value.
	GraphPPRThreshold float64

	// MaxChunksPerFile bounds how many results from the same file_path the
	// diversity filter keeps. Results in the preserved head are kept
	// regardless but still count toward their file's total.
	MaxChunksPerFile int

	// DiversityPreserveTopN is the number of top-ranked results the
	// diversity filter keeps unconditionally, regardless of file repeats.
	DiversityPreserveTopN int

	// TypeBoosts maps an object_type (or document category) to its
	// additive Stage-4 boost. A type absent from the map gets 0.
	TypeBoosts map[string]float64

	// RelationWeights maps a relation type to its Stage-3 propagation
	// weight w(R). A relation type absent from the map gets 1.0.
	RelationWeights map[codeobject.RelationType]float64
}

// DefaultConfig returns the baseline retrieval tuning.
func DefaultConfig() Config {
	return Config{
		ExpandGraph:           true,
		GraphScoreWeight:      0.3,
		GraphPPRThreshold:     0.4,
		MaxChunksPerFile:      2,
		DiversityPreserveTopN: 1,
		TypeBoosts: map[string]float64{
			"class":     0.12,
			"method":    0.10,
			"function":  0.10,
			"enum":      0.08,
			"interface": 0.06,
			"markdown":  0.07,
			"config":    0.05,
			"type":      0.04,
			"field":     0.02,
			"variable":  0.00,
		},
		RelationWeights: map[codeobject.RelationType]float64{
			codeobject.RelReferences:   0.5,
			codeobject.RelReferencedBy: 0.5,
		},
	}
}

func (c Config) relationWeight(t codeobject.RelationType) float64 {
	if w, ok := c.RelationWeights[t]; ok {
		return w
	}
	return 1.0
}

func (c Config) typeBoost(objectType string) float64 {
	if b, ok := c.TypeBoosts[objectType]; ok {
		return b
	}
	return 0.0
}
