package domain

import "testing"

func TestVectorPointID(t *testing.T) {
	withExternal := &Product{ID: 42, ExternalVectorID: "6f1c8b1e-9a1d-4c2e-8f3a-111111111111"}
	if got := withExternal.VectorPointID(); got != "6f1c8b1e-9a1d-4c2e-8f3a-111111111111" {
		t.Fatalf("VectorPointID() = %s, want external id", got)
	}

	canonical := &Product{ID: 42}
	if got := canonical.VectorPointID(); got != "42" {
		t.Fatalf("VectorPointID() = %s, want 42", got)
	}
}
