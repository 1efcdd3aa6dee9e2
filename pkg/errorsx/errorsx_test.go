package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonASRTranscribe)
	if Reason(err) != ReasonASRTranscribe {
		t.Fatalf("expected reason %s, got %s", ReasonASRTranscribe, Reason(err))
	}
	if !HasReason(err, ReasonASRTranscribe) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonStoreInsert)
	second := Wrap(first, ReasonASRTranscribe)
	if Reason(second) != ReasonStoreInsert {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonASRTranscribe) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil error")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
