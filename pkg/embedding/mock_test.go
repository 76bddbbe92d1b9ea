// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider(128)
	ctx := context.Background()

	a, err := p.Embed(ctx, []string{"func Foo() {}"}, DocumentPassage)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := p.Embed(ctx, []string{"func Foo() {}"}, DocumentPassage)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(a[0]) != len(b[0]) {
		t.Fatal("dimension mismatch across calls")
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("embedding not deterministic at index %d: %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestMockProviderPreservesOrder(t *testing.T) {
	p := NewMockProvider(32)
	texts := []string{"short", "a much longer piece of text than the first", "mid length text"}
	vectors, err := p.Embed(context.Background(), texts, NL2CodeQuery)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, text := range texts {
		single, _ := p.Embed(context.Background(), []string{text}, NL2CodeQuery)
		for j := range single[0] {
			if vectors[i][j] != single[0][j] {
				t.Fatalf("batch embedding %d diverged from single embedding at dim %d", i, j)
			}
		}
	}
}

func TestMockProviderUnitNorm(t *testing.T) {
	p := NewMockProvider(64)
	vecs, err := p.Embed(context.Background(), []string{"x"}, QAPassage)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var sumSq float64
	for _, v := range vecs[0] {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm < 0.99 || norm > 1.01 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestMockProviderDistinguishesInstructionType(t *testing.T) {
	p := NewMockProvider(32)
	a, _ := p.Embed(context.Background(), []string{"same text"}, NL2CodeQuery)
	b, _ := p.Embed(context.Background(), []string{"same text"}, NL2CodePassage)
	identical := true
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatal("expected query and passage instruction types to produce different embeddings")
	}
}
