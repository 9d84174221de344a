package suite

import (
	"context"
	"strings"
	"testing"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

// runSection builds the named suite section and runs it standalone.
func runSection(t *testing.T, params Params, build func(Params) ([]*harness.Section, error), id string) harness.SectionReport {
	t.Helper()
	sections, err := build(params)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	reg := harness.NewRegistry()
	for _, sec := range sections {
		if err := reg.Register(sec); err != nil {
			t.Fatalf("register %s: %v", sec.ID(), err)
		}
	}
	sec, err := reg.Get(id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	rep, err := harness.New(harness.Options{}).RunSection(context.Background(), reg, sec)
	if err != nil {
		t.Fatalf("run %s: %v", id, err)
	}
	return rep
}

func TestGPIOBasicAgainstFixture(t *testing.T) {
	rep := runSection(t, benchParams(t), buildGPIO, "gpio-basic")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected passing section, got %s: %+v", rep.Status, rep.Results)
	}
	if rep.Passed != 4 {
		t.Fatalf("expected 4 passing checks, got %d", rep.Passed)
	}
}

func TestGPIOBasicMissingController(t *testing.T) {
	params := Params{Prober: probe.New(t.TempDir())}
	rep := runSection(t, params, buildGPIO, "gpio-basic")
	if rep.Status != harness.StatusFailed {
		t.Fatalf("expected failing section on empty root, got %s", rep.Status)
	}
}

func TestGPIOChipOption(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/gpio/gpiochip2/ngpio", "16\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip2/base", "480\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip2/label", "expander\n")

	params := Params{
		Prober:  probe.New(root),
		Options: map[string]map[string]any{"gpio": {"chip": "gpiochip2"}},
	}
	rep := runSection(t, params, buildGPIO, "gpio-basic")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected chip option to redirect probes, got %s: %+v", rep.Status, rep.Results)
	}
}

func TestGPIOStressReportsReadCount(t *testing.T) {
	params := benchParams(t)
	params.Options = map[string]map[string]any{
		"gpio": {"stress_reads": 8, "stress_rate": 2000},
	}
	rep := runSection(t, params, buildGPIO, "gpio-stress")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected stress section to pass, got %s: %+v", rep.Status, rep.Results)
	}
	if !strings.Contains(rep.Results[0].Message, "8 reads") {
		t.Fatalf("expected read count in message, got %q", rep.Results[0].Message)
	}
}

func TestGPIOEdgeProbes(t *testing.T) {
	rep := runSection(t, benchParams(t), buildGPIO, "gpio-edge")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected edge probes to pass, got %s: %+v", rep.Status, rep.Results)
	}

	// Boundary check must reject a base that walks off the line space.
	root := t.TempDir()
	writeFixture(t, root, "sys/class/gpio/gpiochip0/ngpio", "64\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip0/base", "4090\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip0/label", "bad\n")
	rep = runSection(t, Params{Prober: probe.New(root)}, buildGPIO, "gpio-edge")
	if rep.Status != harness.StatusFailed {
		t.Fatalf("expected out-of-range base to fail, got %s", rep.Status)
	}
}
