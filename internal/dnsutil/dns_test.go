package dnsutil

import (
	"context"
	"testing"
)

func TestResolveLiteralReverses(t *testing.T) {
	results := Resolve(context.Background(), []string{"127.0.0.1"})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Src != "127.0.0.1" {
		t.Errorf("Src = %q, want 127.0.0.1", results[0].Src)
	}
	if results[0].Kind.Tag != KindHost && results[0].Kind.Tag != KindError {
		t.Errorf("Tag = %v, want KindHost or KindError", results[0].Kind.Tag)
	}
}

func TestResolvePreservesOrder(t *testing.T) {
	targets := []string{"127.0.0.1", "::1", "localhost"}
	results := Resolve(context.Background(), targets)
	if len(results) != len(targets) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(targets))
	}
	for i, r := range results {
		if r.Src != targets[i] {
			t.Errorf("results[%d].Src = %q, want %q", i, r.Src, targets[i])
		}
	}
}

func TestKindString(t *testing.T) {
	k := Kind{Tag: KindError, Err: "boom"}
	if got := k.String(); got != "Err[boom]" {
		t.Errorf("String() = %q, want Err[boom]", got)
	}
}
