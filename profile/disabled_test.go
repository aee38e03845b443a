//go:build !pprof

package profile

import "testing"

func TestProfiler_Start_WithoutTag(t *testing.T) {
	if m := Modes(); len(m) != 0 {
		t.Errorf("Modes() = %v, want none", m)
	}

	p := Profiler{Mode: "cpu"}
	if p.Enabled() {
		t.Error("Enabled() = true without pprof build tag")
	}

	p.Start().Stop()
}
