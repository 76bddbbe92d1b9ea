// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := New()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"camelCase", "getUserName", []string{"get", "user", "name"}},
		{"PascalCase", "HTTPServer", []string{"http", "server"}},
		{"snake_case", "user_id_field", []string{"user", "id", "field"}},
		{"kebab-case", "my-cool-func", []string{"my", "cool"}},
		{"acronym+digit", "MD5sum", []string{"md", "sum"}},
		{"drops short tokens", "a b ok", []string{"ok"}},
		{"drops stopwords", "the function is public", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tok.Tokenize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tok := New()
	inputs := []string{"HTTPServerConfig", "parse_json_body", "calculateShippingCost"}

	for _, in := range inputs {
		first := tok.Tokenize(in)
		for i := 0; i < 5; i++ {
			got := tok.Tokenize(in)
			if !reflect.DeepEqual(first, got) {
				t.Fatalf("Tokenize(%q) not deterministic across calls: %v vs %v", in, first, got)
			}
		}
	}
}

func TestTokenizeMemoizationDoesNotMutateShared(t *testing.T) {
	tok := New()
	a := tok.Tokenize("getUserName")
	b := tok.Tokenize("getUserName")
	if &a[0] == &b[0] {
		// sharing the backing array is fine as long as neither caller mutates it
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("cached result diverged: %v vs %v", a, b)
	}
}

func TestMinTokenLength(t *testing.T) {
	tok := New(WithStopwords(nil))
	got := tok.Tokenize("i am ok go")
	want := []string{"am", "ok", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
