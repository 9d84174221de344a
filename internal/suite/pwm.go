package suite

import (
	"context"
	"fmt"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
)

type pwmOptions struct {
	Chip string `mapstructure:"chip"`
}

func buildPWM(params Params) ([]*harness.Section, error) {
	opts := pwmOptions{Chip: "pwmchip0"}
	if err := params.decodeOptions("pwm", &opts); err != nil {
		return nil, err
	}
	p := params.Prober
	chipDir := []string{"sys", "class", "pwm", opts.Chip}

	basic := params.section("pwm-basic", "PWM Controller",
		"Controller presence and channel counts").
		Add("pwm class present", func(ctx context.Context) (bool, string) {
			if !p.IsDir("sys", "class", "pwm") {
				return false, "no pwm class in sysfs"
			}
			return true, ""
		}).
		Add("chip registered", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("sys/class/pwm/pwmchip*")
			if err != nil {
				return false, "no pwm chips found"
			}
			return true, strings.Join(names, ", ")
		}).
		Add("channel count positive", func(ctx context.Context) (bool, string) {
			n, err := p.ReadInt(append(chipDir, "npwm")...)
			if err != nil {
				return false, err.Error()
			}
			if n <= 0 {
				return false, fmt.Sprintf("chip reports %d channels", n)
			}
			return true, fmt.Sprintf("%d channels", n)
		})

	export := params.section("pwm-export", "PWM Export Interface",
		"Export control and exported channel attribute shape").
		Add("export control present", func(ctx context.Context) (bool, string) {
			if !p.Exists(append(chipDir, "export")...) {
				return false, "no export control file"
			}
			return true, ""
		}).
		Add("exported channels well-formed", func(ctx context.Context) (bool, string) {
			channels, err := p.Glob("sys/class/pwm/" + opts.Chip + "/pwm[0-9]*")
			if err != nil {
				return false, err.Error()
			}
			for _, ch := range channels {
				for _, attr := range []string{"period", "duty_cycle", "enable"} {
					if !p.Exists(ch, attr) {
						return false, fmt.Sprintf("%s missing %s", ch, attr)
					}
				}
			}
			if len(channels) == 0 {
				return true, "no channels exported"
			}
			return true, fmt.Sprintf("%d channel(s)", len(channels))
		}).
		Add("polarity values recognized", func(ctx context.Context) (bool, string) {
			channels, err := p.Glob("sys/class/pwm/" + opts.Chip + "/pwm[0-9]*")
			if err != nil {
				return false, err.Error()
			}
			for _, ch := range channels {
				pol, err := p.ReadTrimmed(ch, "polarity")
				if err != nil {
					return false, err.Error()
				}
				if pol != "normal" && pol != "inversed" {
					return false, fmt.Sprintf("%s reports polarity %q", ch, pol)
				}
			}
			if len(channels) == 0 {
				return true, "no channels exported"
			}
			return true, ""
		})

	return []*harness.Section{basic, export}, nil
}
