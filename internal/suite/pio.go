package suite

import (
	"context"
	"fmt"

	"github.com/benchrig/rigcheck/internal/harness"
)

// pioProgram describes a peripheral I/O state machine program the way the
// firmware loads one: an instruction window with wrap points, a clock
// divider and a paired FIFO.
type pioProgram struct {
	Name       string
	Length     int
	Origin     int
	WrapTarget int
	Wrap       int
	ClockDiv   float64
	FIFODepth  int
}

const (
	pioInstructionSlots = 32
	pioMinClockDiv      = 1.0
	pioMaxClockDiv      = 65536.0
	pioFIFOSlots        = 8
)

func (p pioProgram) validate() error {
	if p.Length <= 0 || p.Length > pioInstructionSlots {
		return fmt.Errorf("%s: %d instructions, window holds %d", p.Name, p.Length, pioInstructionSlots)
	}
	if p.Origin < 0 || p.Origin+p.Length > pioInstructionSlots {
		return fmt.Errorf("%s: load at %d overflows instruction memory", p.Name, p.Origin)
	}
	if p.WrapTarget < 0 || p.WrapTarget >= p.Length {
		return fmt.Errorf("%s: wrap target %d outside program", p.Name, p.WrapTarget)
	}
	if p.Wrap < p.WrapTarget || p.Wrap >= p.Length {
		return fmt.Errorf("%s: wrap %d before target %d or outside program", p.Name, p.Wrap, p.WrapTarget)
	}
	if p.ClockDiv < pioMinClockDiv || p.ClockDiv > pioMaxClockDiv {
		return fmt.Errorf("%s: clock divider %g out of range", p.Name, p.ClockDiv)
	}
	if p.FIFODepth <= 0 || p.FIFODepth > pioFIFOSlots {
		return fmt.Errorf("%s: fifo depth %d out of range", p.Name, p.FIFODepth)
	}
	return nil
}

// cannedPrograms are the descriptors the firmware ships. The sections
// validate each one the way the loader would before starting a machine.
func cannedPrograms() []pioProgram {
	return []pioProgram{
		{Name: "blink", Length: 6, Origin: 0, WrapTarget: 0, Wrap: 5, ClockDiv: 32768, FIFODepth: 4},
		{Name: "uart-tx", Length: 4, Origin: 8, WrapTarget: 0, Wrap: 3, ClockDiv: 8, FIFODepth: 8},
		{Name: "ws2812", Length: 4, Origin: 16, WrapTarget: 0, Wrap: 3, ClockDiv: 3.75, FIFODepth: 4},
	}
}

// pioFIFO simulates a bounded transmit FIFO.
type pioFIFO struct {
	depth int
	slots []uint32
}

func newPIOFIFO(depth int) *pioFIFO {
	return &pioFIFO{depth: depth}
}

func (f *pioFIFO) push(v uint32) bool {
	if len(f.slots) >= f.depth {
		return false
	}
	f.slots = append(f.slots, v)
	return true
}

func (f *pioFIFO) pop() (uint32, bool) {
	if len(f.slots) == 0 {
		return 0, false
	}
	v := f.slots[0]
	f.slots = f.slots[1:]
	return v, true
}

func (f *pioFIFO) len() int { return len(f.slots) }

func buildPIO(params Params) ([]*harness.Section, error) {
	programs := cannedPrograms()

	program := params.section("pio-program", "PIO Program Descriptors",
		"Canned state machine programs validate as loadable").
		Add("programs fit instruction memory", func(ctx context.Context) (bool, string) {
			for _, prog := range programs {
				if prog.Origin < 0 || prog.Origin+prog.Length > pioInstructionSlots {
					return false, fmt.Sprintf("%s overflows at offset %d", prog.Name, prog.Origin)
				}
			}
			return true, fmt.Sprintf("%d programs", len(programs))
		}).
		Add("wrap bounds ordered", func(ctx context.Context) (bool, string) {
			for _, prog := range programs {
				if prog.WrapTarget < 0 || prog.Wrap < prog.WrapTarget || prog.Wrap >= prog.Length {
					return false, fmt.Sprintf("%s wraps %d..%d over %d instructions",
						prog.Name, prog.WrapTarget, prog.Wrap, prog.Length)
				}
			}
			return true, ""
		}).
		Add("clock dividers in range", func(ctx context.Context) (bool, string) {
			for _, prog := range programs {
				if prog.ClockDiv < pioMinClockDiv || prog.ClockDiv > pioMaxClockDiv {
					return false, fmt.Sprintf("%s divider %g", prog.Name, prog.ClockDiv)
				}
			}
			return true, ""
		}).
		Add("descriptors load", func(ctx context.Context) (bool, string) {
			for _, prog := range programs {
				if err := prog.validate(); err != nil {
					return false, err.Error()
				}
			}
			return true, ""
		})

	fifo := params.section("pio-fifo", "PIO FIFO Behavior",
		"Simulated transmit FIFO ordering and bounds").
		Add("ordering preserved", func(ctx context.Context) (bool, string) {
			f := newPIOFIFO(4)
			for v := uint32(1); v <= 4; v++ {
				f.push(v)
			}
			for want := uint32(1); want <= 4; want++ {
				got, ok := f.pop()
				if !ok || got != want {
					return false, fmt.Sprintf("popped %d, want %d", got, want)
				}
			}
			return true, ""
		}).
		Add("full fifo rejects push", func(ctx context.Context) (bool, string) {
			f := newPIOFIFO(2)
			f.push(1)
			f.push(2)
			if f.push(3) {
				return false, "push succeeded past depth"
			}
			if f.len() != 2 {
				return false, fmt.Sprintf("depth 2 fifo holds %d", f.len())
			}
			return true, ""
		}).
		Add("empty fifo rejects pop", func(ctx context.Context) (bool, string) {
			f := newPIOFIFO(2)
			if _, ok := f.pop(); ok {
				return false, "pop succeeded on empty fifo"
			}
			f.push(7)
			f.pop()
			if _, ok := f.pop(); ok {
				return false, "pop succeeded after drain"
			}
			return true, ""
		}).
		Add("program depths honored", func(ctx context.Context) (bool, string) {
			for _, prog := range programs {
				f := newPIOFIFO(prog.FIFODepth)
				accepted := 0
				for i := 0; i < prog.FIFODepth+1; i++ {
					if f.push(uint32(i)) {
						accepted++
					}
				}
				if accepted != prog.FIFODepth {
					return false, fmt.Sprintf("%s fifo accepted %d of %d", prog.Name, accepted, prog.FIFODepth)
				}
			}
			return true, ""
		})

	return []*harness.Section{program, fifo}, nil
}
