package logger

import "testing"

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if parseLevel(lvl) == nil {
			t.Errorf("parseLevel(%q) = nil, want level", lvl)
		}
	}
	if parseLevel("verbose") != nil {
		t.Error("parseLevel(verbose) should fall back to the config default")
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	log := New("error", false)
	log.Info("dropped below level", String("k", "v"))
	log.With(Int("n", 1)).Error("kept")

	nop := NewNop()
	nop.Warnf("ignored %d", 1)
	if err := nop.Sync(); err != nil {
		t.Errorf("nop Sync: %v", err)
	}
}
