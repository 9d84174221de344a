package suite

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/benchrig/rigcheck/internal/harness"
)

type gpioOptions struct {
	Chip        string  `mapstructure:"chip"`
	MinLines    int     `mapstructure:"min_lines"`
	StressReads int     `mapstructure:"stress_reads"`
	StressRate  float64 `mapstructure:"stress_rate"`
}

func defaultGPIOOptions() gpioOptions {
	return gpioOptions{
		Chip:        "gpiochip0",
		MinLines:    8,
		StressReads: 64,
		StressRate:  200,
	}
}

func buildGPIO(params Params) ([]*harness.Section, error) {
	opts := defaultGPIOOptions()
	if err := params.decodeOptions("gpio", &opts); err != nil {
		return nil, err
	}
	if opts.StressReads <= 0 || opts.StressRate <= 0 {
		return nil, fmt.Errorf("stress_reads and stress_rate must be positive")
	}
	p := params.Prober
	chipDir := []string{"sys", "class", "gpio", opts.Chip}

	basic := params.section("gpio-basic", "GPIO Basic Operations",
		"Controller presence, line counts and attribute reads").
		Add("controller class present", func(ctx context.Context) (bool, string) {
			if p.IsDir("sys", "class", "gpio") {
				return true, "sysfs gpio class"
			}
			if p.Exists("dev", opts.Chip) {
				return true, "character device interface"
			}
			return false, "no gpio interface exposed"
		}).
		Add("controller registered", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("sys/class/gpio/gpiochip*")
			if err != nil {
				names, err = p.Devices("dev/gpiochip*")
			}
			if err != nil {
				return false, "no gpio controllers found"
			}
			return true, strings.Join(names, ", ")
		}).
		Add("line count sane", func(ctx context.Context) (bool, string) {
			n, err := p.ReadInt(append(chipDir, "ngpio")...)
			if err != nil {
				return false, err.Error()
			}
			if n < opts.MinLines {
				return false, fmt.Sprintf("%d lines, want at least %d", n, opts.MinLines)
			}
			return true, fmt.Sprintf("%d lines", n)
		}).
		Add("label readable", func(ctx context.Context) (bool, string) {
			label, err := p.ReadTrimmed(append(chipDir, "label")...)
			if err != nil {
				return false, err.Error()
			}
			if label == "" {
				return false, "empty controller label"
			}
			return true, label
		})

	edge := params.section("gpio-edge", "GPIO Edge Cases",
		"Invalid controllers and boundary attribute probes").
		Add("missing controller read fails", func(ctx context.Context) (bool, string) {
			if _, err := p.ReadInt("sys", "class", "gpio", "gpiochip-none", "ngpio"); err == nil {
				return false, "read of phantom controller succeeded"
			}
			return true, ""
		}).
		Add("line base within bounds", func(ctx context.Context) (bool, string) {
			base, err := p.ReadInt(append(chipDir, "base")...)
			if err != nil {
				return false, err.Error()
			}
			n, err := p.ReadInt(append(chipDir, "ngpio")...)
			if err != nil {
				return false, err.Error()
			}
			if base < 0 || base+n > 4096 {
				return false, fmt.Sprintf("base %d with %d lines out of range", base, n)
			}
			return true, fmt.Sprintf("lines %d..%d", base, base+n-1)
		}).
		Add("read recovers after failure", func(ctx context.Context) (bool, string) {
			p.ReadInt("sys", "class", "gpio", "gpiochip-none", "ngpio")
			if _, err := p.ReadInt(append(chipDir, "ngpio")...); err != nil {
				return false, fmt.Sprintf("good read failed after bad one: %v", err)
			}
			return true, ""
		})

	stress := params.section("gpio-stress", "GPIO Stress",
		"Rate-paced repeated attribute reads").
		Add("sustained attribute reads", func(ctx context.Context) (bool, string) {
			limiter := rate.NewLimiter(rate.Limit(opts.StressRate), 1)
			var last int
			for i := 0; i < opts.StressReads; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return false, fmt.Sprintf("aborted after %d reads: %v", i, err)
				}
				n, err := p.ReadInt(append(chipDir, "ngpio")...)
				if err != nil {
					return false, fmt.Sprintf("read %d failed: %v", i+1, err)
				}
				if i > 0 && n != last {
					return false, fmt.Sprintf("line count changed mid-run: %d then %d", last, n)
				}
				last = n
			}
			return true, fmt.Sprintf("%d reads at %.0f/s", opts.StressReads, opts.StressRate)
		})

	return []*harness.Section{basic, edge, stress}, nil
}
