// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package tokenize

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the per-Tokenizer memoization cache.
const DefaultCacheSize = 4096

// MinTokenLength is the shortest token length Tokenize keeps.
const MinTokenLength = 2

// Tokenizer splits identifiers and free text into ordered, lowercase,
// code-aware tokens. It is safe for concurrent use.
type Tokenizer struct {
	stopwords map[string]struct{}
	cache     *lru.Cache[string, []string]
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopwords overrides the default stopword set.
func WithStopwords(words []string) Option {
	return func(t *Tokenizer) {
		t.stopwords = buildStopwordSet(words...)
	}
}

// WithCacheSize overrides the default memoization cache size.
func WithCacheSize(size int) Option {
	return func(t *Tokenizer) {
		if size <= 0 {
			return
		}
		cache, _ := lru.New[string, []string](size)
		t.cache = cache
	}
}

// New creates a Tokenizer with the default stopword set and a bounded LRU
// memoization cache.
func New(opts ...Option) *Tokenizer {
	cache, _ := lru.New[string, []string](DefaultCacheSize)
	t := &Tokenizer{
		stopwords: defaultStopwords,
		cache:     cache,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize splits text into an ordered sequence of lowercase tokens of
// length >= MinTokenLength, with stopwords dropped. Results are memoized
// by input string. Tokenize is deterministic: identical input always
// produces a byte-identical token sequence, across processes and
// platforms.
func (t *Tokenizer) Tokenize(text string) []string {
	if t.cache != nil {
		if cached, ok := t.cache.Get(text); ok {
			return cached
		}
	}

	fragments := splitNonAlphanumeric(text)

	tokens := make([]string, 0, len(fragments)*2)
	for _, frag := range fragments {
		for _, part := range splitCamelCase(frag) {
			part = strings.ToLower(part)
			if len([]rune(part)) < MinTokenLength {
				continue
			}
			if _, stop := t.stopwords[part]; stop {
				continue
			}
			tokens = append(tokens, part)
		}
	}

	if t.cache != nil {
		t.cache.Add(text, tokens)
	}
	return tokens
}

// splitNonAlphanumeric splits on any rune that is not a letter or digit,
// including '_' and '-'.
func splitNonAlphanumeric(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamelCase splits a single alphanumeric fragment at camelCase /
// PascalCase boundaries. Runs of consecutive uppercase letters followed by
// a lowercase letter are split before the last uppercase letter of the run
// ("HTTPServer" -> "HTTP", "Server"). An acronym run followed by a digit
// is split only at the letter/digit boundary, so the run itself stays
// whole ("MD5sum" -> "MD", "5", "sum").
func splitCamelCase(fragment string) []string {
	if fragment == "" {
		return nil
	}

	runes := []rune(fragment)
	n := len(runes)
	parts := make([]string, 0, n)
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			parts = append(parts, b.String())
			b.Reset()
		}
	}

	for i := 0; i < n; i++ {
		cur := runes[i]
		b.WriteRune(cur)

		if i == n-1 {
			continue
		}
		next := runes[i+1]

		switch {
		// Letter <-> digit transition.
		case (unicode.IsLetter(cur) && unicode.IsDigit(next)) ||
			(unicode.IsDigit(cur) && unicode.IsLetter(next)):
			flush()

		// lowercase -> uppercase: "userName" -> "user","Name"
		case unicode.IsLower(cur) && unicode.IsUpper(next):
			flush()

		// Acronym run followed by lowercase: "HTTPServer" -> "HTTP","Server"
		case unicode.IsUpper(cur) && unicode.IsUpper(next) &&
			i+2 < n && unicode.IsLower(runes[i+2]):
			flush()
		}
	}
	flush()
	return parts
}
