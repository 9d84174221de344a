package suite

import (
	"strings"
	"testing"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

func TestPWMBasicAgainstFixture(t *testing.T) {
	rep := runSection(t, benchParams(t), buildPWM, "pwm-basic")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected passing section, got %s: %+v", rep.Status, rep.Results)
	}
	if rep.Passed != 3 {
		t.Fatalf("expected 3 passing checks, got %d", rep.Passed)
	}
}

func TestPWMExportAgainstFixture(t *testing.T) {
	rep := runSection(t, benchParams(t), buildPWM, "pwm-export")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected export section to pass, got %s: %+v", rep.Status, rep.Results)
	}
}

func TestPWMExportIncompleteChannel(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/pwm/pwmchip0/npwm", "2\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/export", "")
	// pwm0 lacks the enable attribute.
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/period", "1000000\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/duty_cycle", "500000\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/polarity", "normal\n")

	rep := runSection(t, Params{Prober: probe.New(root)}, buildPWM, "pwm-export")
	if rep.Status != harness.StatusFailed {
		t.Fatalf("expected incomplete channel to fail, got %s", rep.Status)
	}
	var msg string
	for _, res := range rep.Results {
		if res.Name == "exported channels well-formed" {
			msg = res.Message
		}
	}
	if !strings.Contains(msg, "missing enable") {
		t.Fatalf("expected missing attribute named, got %q", msg)
	}
}

func TestPWMPolarityRejectsUnknownValue(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/pwm/pwmchip0/npwm", "1\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/export", "")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/period", "1000000\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/duty_cycle", "0\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/enable", "0\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/polarity", "sideways\n")

	rep := runSection(t, Params{Prober: probe.New(root)}, buildPWM, "pwm-export")
	if rep.Status != harness.StatusFailed {
		t.Fatalf("expected unknown polarity to fail, got %s", rep.Status)
	}
}

func TestPWMNoExportedChannels(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/pwm/pwmchip0/npwm", "4\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/export", "")

	rep := runSection(t, Params{Prober: probe.New(root)}, buildPWM, "pwm-export")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("an unexported chip is healthy, got %s: %+v", rep.Status, rep.Results)
	}
}

func TestPWMChipOption(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/pwm/pwmchip2/npwm", "8\n")

	params := Params{
		Prober:  probe.New(root),
		Options: map[string]map[string]any{"pwm": {"chip": "pwmchip2"}},
	}
	rep := runSection(t, params, buildPWM, "pwm-basic")
	if rep.Status != harness.StatusPassed {
		t.Fatalf("expected chip option to redirect probes, got %s: %+v", rep.Status, rep.Results)
	}
}
