package suite

import (
	"testing"

	"github.com/benchrig/rigcheck/internal/harness"
)

func TestCannedProgramsValidate(t *testing.T) {
	for _, prog := range cannedPrograms() {
		if err := prog.validate(); err != nil {
			t.Fatalf("%s: %v", prog.Name, err)
		}
	}
}

func TestProgramValidationRejects(t *testing.T) {
	cases := []struct {
		name string
		prog pioProgram
	}{
		{"empty", pioProgram{Name: "x", Length: 0, Wrap: 0, ClockDiv: 1, FIFODepth: 4}},
		{"too long", pioProgram{Name: "x", Length: 33, Wrap: 0, ClockDiv: 1, FIFODepth: 4}},
		{"origin overflow", pioProgram{Name: "x", Length: 8, Origin: 28, Wrap: 7, ClockDiv: 1, FIFODepth: 4}},
		{"wrap target outside", pioProgram{Name: "x", Length: 4, WrapTarget: 4, Wrap: 3, ClockDiv: 1, FIFODepth: 4}},
		{"wrap before target", pioProgram{Name: "x", Length: 4, WrapTarget: 2, Wrap: 1, ClockDiv: 1, FIFODepth: 4}},
		{"divider too small", pioProgram{Name: "x", Length: 4, Wrap: 3, ClockDiv: 0.5, FIFODepth: 4}},
		{"divider too large", pioProgram{Name: "x", Length: 4, Wrap: 3, ClockDiv: 70000, FIFODepth: 4}},
		{"fifo too deep", pioProgram{Name: "x", Length: 4, Wrap: 3, ClockDiv: 1, FIFODepth: 16}},
	}
	for _, tc := range cases {
		if err := tc.prog.validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestFIFOSimulation(t *testing.T) {
	f := newPIOFIFO(3)
	for v := uint32(10); v < 13; v++ {
		if !f.push(v) {
			t.Fatalf("push %d rejected below depth", v)
		}
	}
	if f.push(99) {
		t.Fatalf("push accepted past depth")
	}
	for want := uint32(10); want < 13; want++ {
		got, ok := f.pop()
		if !ok || got != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
		}
	}
	if _, ok := f.pop(); ok {
		t.Fatalf("pop succeeded on drained fifo")
	}
}

func TestPIOSectionsPass(t *testing.T) {
	params := Params{}
	for _, id := range []string{"pio-program", "pio-fifo"} {
		rep := runSection(t, params, buildPIO, id)
		if rep.Status != harness.StatusPassed {
			t.Fatalf("%s: expected pass, got %s: %+v", id, rep.Status, rep.Results)
		}
	}
}
