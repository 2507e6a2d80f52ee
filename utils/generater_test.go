package utils

import (
	"strings"
	"testing"
)

func TestTxRefRoundTrip(t *testing.T) {
	ref := OrderTxRef(42)
	if !strings.HasPrefix(ref, "order-42-") {
		t.Fatalf("unexpected order ref %q", ref)
	}

	kind, id, err := ParseTxRef(ref)
	if err != nil {
		t.Fatal(err)
	}
	if kind != "order" || id != 42 {
		t.Errorf("parsed (%s, %d), want (order, 42)", kind, id)
	}

	kind, id, err = ParseTxRef(SplitTxRef(7))
	if err != nil {
		t.Fatal(err)
	}
	if kind != "split" || id != 7 {
		t.Errorf("parsed (%s, %d), want (split, 7)", kind, id)
	}
}

func TestTxRefsAreUnique(t *testing.T) {
	// Retried link generations must be distinguishable provider-side.
	if OrderTxRef(1) == OrderTxRef(1) {
		t.Error("two refs for the same order must differ")
	}
}

func TestParseTxRefMalformed(t *testing.T) {
	for _, ref := range []string{"", "order", "order-abc-def"} {
		if _, _, err := ParseTxRef(ref); err == nil {
			t.Errorf("ParseTxRef(%q) should fail", ref)
		}
	}
}
