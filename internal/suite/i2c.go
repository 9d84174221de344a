package suite

import (
	"context"
	"fmt"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
)

type i2cOptions struct {
	MinAdapters int `mapstructure:"min_adapters"`
}

func buildI2C(params Params) ([]*harness.Section, error) {
	opts := i2cOptions{MinAdapters: 1}
	if err := params.decodeOptions("i2c", &opts); err != nil {
		return nil, err
	}
	p := params.Prober

	bus := params.section("i2c-bus", "I2C Bus",
		"Adapter device nodes and their stability").
		Add("adapter nodes present", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("dev/i2c-*")
			if err != nil {
				return false, "no i2c device nodes"
			}
			if len(names) < opts.MinAdapters {
				return false, fmt.Sprintf("%d adapter(s), want at least %d", len(names), opts.MinAdapters)
			}
			return true, strings.Join(names, ", ")
		}).
		Add("nodes accessible", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("dev/i2c-*")
			if err != nil {
				return false, "no i2c device nodes"
			}
			for _, name := range names {
				if err := p.CanOpen("dev", name); err != nil {
					return false, err.Error()
				}
			}
			return true, ""
		}).
		Add("enumeration stable", func(ctx context.Context) (bool, string) {
			first, err := p.Devices("dev/i2c-*")
			if err != nil {
				return false, "no i2c device nodes"
			}
			second, err := p.Devices("dev/i2c-*")
			if err != nil {
				return false, "adapters vanished on re-scan"
			}
			if strings.Join(first, ",") != strings.Join(second, ",") {
				return false, fmt.Sprintf("scan drifted: %v then %v", first, second)
			}
			return true, ""
		})

	adapters := params.section("i2c-func", "I2C Adapter Attributes",
		"Sysfs adapter naming and numbering consistency").
		Add("adapter names readable", func(ctx context.Context) (bool, string) {
			dirs, err := p.Glob("sys/class/i2c-adapter/i2c-*")
			if err != nil {
				return false, err.Error()
			}
			if len(dirs) == 0 {
				return false, "no adapters in sysfs"
			}
			for _, dir := range dirs {
				name, err := p.ReadTrimmed(dir, "name")
				if err != nil {
					return false, err.Error()
				}
				if name == "" {
					return false, fmt.Sprintf("%s has empty name", dir)
				}
			}
			return true, fmt.Sprintf("%d adapter(s) named", len(dirs))
		}).
		Add("numbering matches device nodes", func(ctx context.Context) (bool, string) {
			dirs, err := p.Glob("sys/class/i2c-adapter/i2c-*")
			if err != nil {
				return false, err.Error()
			}
			nodes, err := p.Devices("dev/i2c-*")
			if err != nil {
				return false, "no i2c device nodes"
			}
			if len(dirs) != len(nodes) {
				return false, fmt.Sprintf("%d sysfs adapters, %d device nodes", len(dirs), len(nodes))
			}
			return true, ""
		})

	return []*harness.Section{bus, adapters}, nil
}
