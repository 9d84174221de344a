// Package suite registers the built-in peripheral check sections. Each
// peripheral lives in its own file and inspects host interfaces (sysfs,
// devfs, procfs) through a probe.Prober, so the same checks run against a
// live bench or a fixture tree.
package suite

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

// Params carries everything a suite needs to build its sections.
type Params struct {
	Prober *probe.Prober

	// Options holds per-suite option maps from the config file, keyed by
	// suite name (gpio, pwm, i2c, spi, wifi, bluetooth, pio).
	Options map[string]map[string]any

	// DefaultTimeout is recorded on each section as its advisory budget.
	DefaultTimeout time.Duration
}

type builder struct {
	name  string
	build func(Params) ([]*harness.Section, error)
}

// builders lists every peripheral suite in registration order.
var builders = []builder{
	{"gpio", buildGPIO},
	{"pwm", buildPWM},
	{"i2c", buildI2C},
	{"spi", buildSPI},
	{"wifi", buildWiFi},
	{"bluetooth", buildBluetooth},
	{"pio", buildPIO},
}

// Register builds every peripheral suite and registers its sections in a
// fixed order.
func Register(reg *harness.Registry, params Params) error {
	if params.Prober == nil {
		params.Prober = probe.New("/")
	}
	for _, b := range builders {
		sections, err := b.build(params)
		if err != nil {
			return fmt.Errorf("suite %s: %w", b.name, err)
		}
		for _, sec := range sections {
			if err := reg.Register(sec); err != nil {
				return fmt.Errorf("suite %s: %w", b.name, err)
			}
		}
	}
	return nil
}

// section creates a section carrying the shared advisory timeout.
func (p Params) section(id, title, description string) *harness.Section {
	opts := []harness.SectionOption{harness.WithDescription(description)}
	if p.DefaultTimeout > 0 {
		opts = append(opts, harness.WithTimeout(p.DefaultTimeout))
	}
	return harness.NewSection(id, title, opts...)
}

// decodeOptions fills out from the named suite's option map. An absent map
// leaves the caller's defaults untouched.
func (p Params) decodeOptions(name string, out any) error {
	raw, ok := p.Options[name]
	if !ok {
		return nil
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}
