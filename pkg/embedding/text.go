// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenizer is the shared cl100k_base tiktoken encoder used to measure and
// truncate text before embedding — code tokenizes poorly through a
// character-count heuristic (special characters, operators each cost
// multiple tokens), so a real tokenizer is used instead of naive
// char-length truncation.
var (
	tokenizerOnce sync.Once
	sharedEncoder *tiktoken.Tiktoken
)

func encoder() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
		sharedEncoder = enc
	})
	return sharedEncoder
}

// truncateToTokens truncates text to at most maxTokens tokens, reporting
// whether truncation occurred. Falls back to a conservative char-based
// truncation if the tokenizer failed to load.
func truncateToTokens(text string, maxTokens int) (string, bool) {
	enc := encoder()
	if enc == nil {
		maxChars := maxTokens * 4
		if len(text) > maxChars {
			return text[:maxChars], true
		}
		return text, false
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return enc.Decode(tokens[:maxTokens]), true
}
