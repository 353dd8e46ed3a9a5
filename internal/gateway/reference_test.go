package gateway

import (
	"strings"
	"testing"
)

func TestGenerateReference(t *testing.T) {
	ref := GenerateReference()

	if !strings.HasPrefix(ref, "AKA_LAW_") {
		t.Errorf("reference %q missing prefix", ref)
	}
	if ref != strings.ToUpper(ref) {
		t.Errorf("reference %q is not uppercase", ref)
	}

	parts := strings.Split(ref, "_")
	if len(parts) != 4 {
		t.Fatalf("reference %q has %d parts, want 4", ref, len(parts))
	}
	if len(parts[3]) != 6 {
		t.Errorf("random suffix %q has length %d, want 6", parts[3], len(parts[3]))
	}
}

func TestGenerateReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := GenerateReference()
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = true
	}
}
