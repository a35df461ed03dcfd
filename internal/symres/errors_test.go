package symres

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		PathLookupFailed: "PathLookupFailed",
		SymbolNotFound:   "SymbolNotFound",
		Kind(999):        "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestErrorIsMatchesOnKindAlone(t *testing.T) {
	wrapped := errors.New("boom")
	err := errf(SymbolNotFound, "resolve foo", wrapped)

	if !errors.Is(err, KindOf(SymbolNotFound)) {
		t.Error("expected errors.Is to match on Kind")
	}
	if errors.Is(err, KindOf(MalformedElf)) {
		t.Error("expected errors.Is to not match a different Kind")
	}
}

func TestErrorUnwrap(t *testing.T) {
	wrapped := errors.New("underlying")
	err := errf(IoError, "read x", wrapped)

	if !errors.Is(err, wrapped) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}
