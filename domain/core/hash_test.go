package core

import (
	"testing"
)

func TestComputeInputFingerprint_Deterministic(t *testing.T) {
	fields := map[string]interface{}{
		"alpha": 0.05,
		"power": 0.8,
		"sd":    1.0,
		"delta": 0.5,
	}
	reordered := map[string]interface{}{
		"delta": 0.5,
		"sd":    1.0,
		"power": 0.8,
		"alpha": 0.05,
	}

	fp1, err := ComputeInputFingerprint("one_sample_mean", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fp2, err := ComputeInputFingerprint("one_sample_mean", reordered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fp1 != fp2 {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1, fp2)
	}
	if len(fp1.String()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(fp1.String()))
	}
	if len(fp1.Short()) != 12 {
		t.Errorf("Expected 12 character short form, got %q", fp1.Short())
	}
}

func TestComputeInputFingerprint_Unique(t *testing.T) {
	base, _ := ComputeInputFingerprint("one_sample_mean", map[string]interface{}{"sd": 1.0})

	otherKind, _ := ComputeInputFingerprint("paired_mean", map[string]interface{}{"sd": 1.0})
	if otherKind == base {
		t.Error("Different kinds should produce different fingerprints")
	}

	otherValue, _ := ComputeInputFingerprint("one_sample_mean", map[string]interface{}{"sd": 2.0})
	if otherValue == base {
		t.Error("Different inputs should produce different fingerprints")
	}
}

func TestComputeInputFingerprint_UnencodableField(t *testing.T) {
	_, err := ComputeInputFingerprint("one_sample_mean", map[string]interface{}{"bad": make(chan int)})
	if err == nil {
		t.Error("Expected error for a field that cannot be encoded")
	}
}
