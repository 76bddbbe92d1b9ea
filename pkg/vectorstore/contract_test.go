// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import "testing"

func TestPrefetchCounts(t *testing.T) {
	dense, sparse := prefetchCounts(10)
	if dense != 70 {
		t.Fatalf("dense prefetch = %d, want 70", dense)
	}
	if sparse != 30 {
		t.Fatalf("sparse prefetch = %d, want 30", sparse)
	}
}

func TestPrefetchCountsRoundsUp(t *testing.T) {
	// limit=3: dense = ceil(3*7.0) = 21, sparse = ceil(3*3.0) = 9
	dense, sparse := prefetchCounts(3)
	if dense != 21 || sparse != 9 {
		t.Fatalf("got dense=%d sparse=%d, want 21/9", dense, sparse)
	}
}

func TestFuseRRF(t *testing.T) {
	dense := []string{"a", "b", "c"}
	sparse := []string{"b", "a", "d"}
	fused := fuseRRF(dense, sparse)

	// "a" appears at rank 1 in dense, rank 2 in sparse: 1/61 + 1/62
	wantA := 1.0/61 + 1.0/62
	if diff := fused["a"] - wantA; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("fused[a] = %v, want %v", fused["a"], wantA)
	}
	// "d" only in sparse at rank 3: 1/63
	wantD := 1.0 / 63
	if diff := fused["d"] - wantD; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("fused[d] = %v, want %v", fused["d"], wantD)
	}
	// every id present in both lists outranks an id present in only one,
	// since RRF is monotone in list membership for equal rank positions
	if fused["a"] <= fused["d"] {
		t.Fatalf("expected dual-list id to outrank single-list id: a=%v d=%v", fused["a"], fused["d"])
	}
}

func TestFilterMatch(t *testing.T) {
	payload := map[string]any{"language": "go", "object_type": "function", "file_path": "pkg/foo/bar.go"}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches all", Filter{}, true},
		{"language match", Filter{Language: "go"}, true},
		{"language mismatch", Filter{Language: "python"}, false},
		{"glob prefix match", Filter{FilePathGlob: "pkg/foo/*"}, true},
		{"glob prefix mismatch", Filter{FilePathGlob: "pkg/baz/*"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(payload); got != tc.want {
				t.Fatalf("Match() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCollectionName(t *testing.T) {
	if got := CollectionName("my-project"); got != "codecontext_my-project" {
		t.Fatalf("CollectionName = %q", got)
	}
}
