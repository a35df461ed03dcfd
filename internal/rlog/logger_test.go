package rlog

import "testing"

func TestHex(t *testing.T) {
	cases := map[uint64]string{
		0:      "0x0",
		1:      "0x1",
		0x1000: "0x1000",
		0xdead: "0xdead",
	}
	for v, want := range cases {
		if got := Hex(v); got != want {
			t.Errorf("Hex(0x%x) = %q, want %q", v, got, want)
		}
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Debug("should be silent")
	l.Info("should be silent", Addr(0x1000), Sym("puts"), Section(".plt"))
}

func TestInitOnlyTakesEffectOnce(t *testing.T) {
	Init(false)
	first := L
	Init(true)
	if L != first {
		t.Error("Init should only initialize the global logger once")
	}
}
