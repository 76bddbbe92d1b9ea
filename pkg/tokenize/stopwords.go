// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package tokenize

// defaultStopwords combines common English stopwords with language-agnostic
// code stopwords (keywords that carry little retrieval signal across most
// languages). Both BM25F document/query encoding and Tokenize callers share
// this set unless a Tokenizer is constructed with WithStopwords.
var defaultStopwords = buildStopwordSet(
	// English common words.
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"of", "in", "on", "at", "to", "for", "with", "by", "from", "up",
	"and", "or", "but", "if", "then", "than", "as", "it", "its", "this",
	"that", "these", "those", "there", "here", "do", "does", "did",
	"has", "have", "had", "not", "no", "so", "such", "can", "will",
	"would", "should", "could", "may", "might", "must", "shall",
	"into", "over", "under", "again", "further", "once", "about",

	// Language-agnostic code stopwords.
	"var", "let", "const", "func", "function", "def", "fn", "class",
	"struct", "interface", "return", "import", "package", "module",
	"public", "private", "protected", "static", "final", "void",
	"null", "nil", "true", "false", "new", "self", "this",
)

func buildStopwordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
