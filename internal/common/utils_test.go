package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("no results found.", "zero_results", "no results") {
		t.Fatalf("expected match")
	}
	if HasAny("request_denied", "no results") {
		t.Fatalf("unexpected match")
	}
	if HasAny("anything", "") {
		t.Fatalf("empty substring must not match")
	}
}
