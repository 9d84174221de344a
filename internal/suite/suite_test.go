package suite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

func writeFixture(t *testing.T, root, rel, contents string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func mkdirFixture(t *testing.T, root, rel string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, rel), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
}

// benchFixture lays out a healthy rig under a temp root.
func benchFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "sys/class/gpio/gpiochip0/ngpio", "32\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip0/base", "0\n")
	writeFixture(t, root, "sys/class/gpio/gpiochip0/label", "pinctrl-bench\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/npwm", "4\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/export", "")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/period", "1000000\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/duty_cycle", "500000\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/enable", "1\n")
	writeFixture(t, root, "sys/class/pwm/pwmchip0/pwm0/polarity", "normal\n")
	writeFixture(t, root, "dev/i2c-0", "")
	writeFixture(t, root, "dev/i2c-1", "")
	writeFixture(t, root, "sys/class/i2c-adapter/i2c-0/name", "bench i2c controller\n")
	writeFixture(t, root, "sys/class/i2c-adapter/i2c-1/name", "bench i2c controller\n")
	writeFixture(t, root, "dev/spidev0.0", "")
	writeFixture(t, root, "sys/class/spidev/spidev0.0/modalias", "spi:spidev\n")
	writeFixture(t, root, "sys/class/net/wlan0/operstate", "up\n")
	writeFixture(t, root, "sys/class/net/wlan0/carrier", "1\n")
	mkdirFixture(t, root, "sys/class/net/wlan0/wireless")
	writeFixture(t, root, "proc/net/route",
		"Iface\tDestination\tGateway\tFlags\tRefCnt\tUse\tMetric\tMask\n"+
			"wlan0\t00000000\t0158A8C0\t0003\t0\t0\t600\t00000000\n")
	writeFixture(t, root, "etc/resolv.conf", "nameserver 192.168.88.1\n")
	writeFixture(t, root, "sys/class/bluetooth/hci0/address", "AA:BB:CC:DD:EE:FF\n")
	writeFixture(t, root, "sys/class/rfkill/rfkill0/type", "bluetooth\n")
	writeFixture(t, root, "sys/class/rfkill/rfkill0/soft", "0\n")
	writeFixture(t, root, "sys/class/rfkill/rfkill0/hard", "0\n")
	return root
}

func benchParams(t *testing.T) Params {
	t.Helper()
	return Params{Prober: probe.New(benchFixture(t))}
}

func TestRegisterBuildsAllSuites(t *testing.T) {
	reg := harness.NewRegistry()
	if err := Register(reg, benchParams(t)); err != nil {
		t.Fatalf("register: %v", err)
	}

	want := []string{
		"gpio-basic", "gpio-edge", "gpio-stress",
		"pwm-basic", "pwm-export",
		"i2c-bus", "i2c-func",
		"spi-bus",
		"wifi-link", "wifi-connect",
		"bt-adapter", "bt-rfkill",
		"pio-program", "pio-fifo",
	}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected %d sections, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestHealthyBenchPasses(t *testing.T) {
	reg := harness.NewRegistry()
	params := benchParams(t)
	params.Options = map[string]map[string]any{
		"gpio": {"stress_reads": 8, "stress_rate": 2000},
	}
	if err := Register(reg, params); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Connectivity checks need a live network.
	reg.Disable("wifi-connect")

	runner := harness.New(harness.Options{})
	reports, summary, err := runner.Run(context.Background(), reg, harness.AllEnabled())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 0 {
		for _, rep := range reports {
			for _, res := range rep.Results {
				if !res.Passed {
					t.Errorf("%s / %s: %s", rep.SectionID, res.Name, res.Message)
				}
			}
		}
		t.Fatalf("expected healthy bench, got %d failed checks", summary.Failed)
	}
	if summary.TotalSections != 13 {
		t.Fatalf("expected 13 sections run, got %d", summary.TotalSections)
	}
}

func TestRegisterRejectsBadOptions(t *testing.T) {
	reg := harness.NewRegistry()
	params := benchParams(t)
	params.Options = map[string]map[string]any{
		"gpio": {"stress_reads": -1},
	}
	err := Register(reg, params)
	if err == nil {
		t.Fatalf("expected error for negative stress_reads")
	}
}

func TestRegisterDefaultsProber(t *testing.T) {
	reg := harness.NewRegistry()
	if err := Register(reg, Params{}); err != nil {
		t.Fatalf("register without prober: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatalf("expected sections registered")
	}
}

func TestSectionsCarryTimeout(t *testing.T) {
	reg := harness.NewRegistry()
	params := benchParams(t)
	params.DefaultTimeout = 30 * time.Second
	if err := Register(reg, params); err != nil {
		t.Fatalf("register: %v", err)
	}
	sec, err := reg.Get("gpio-basic")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sec.Timeout() != params.DefaultTimeout {
		t.Fatalf("expected advisory timeout recorded, got %v", sec.Timeout())
	}
}
