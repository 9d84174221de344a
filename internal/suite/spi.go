package suite

import (
	"context"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
)

func buildSPI(params Params) ([]*harness.Section, error) {
	p := params.Prober

	bus := params.section("spi-bus", "SPI Bus",
		"Spidev nodes and driver binding").
		Add("spidev nodes present", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("dev/spidev*")
			if err != nil {
				return false, "no spidev nodes"
			}
			return true, strings.Join(names, ", ")
		}).
		Add("nodes accessible", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("dev/spidev*")
			if err != nil {
				return false, "no spidev nodes"
			}
			for _, name := range names {
				if err := p.CanOpen("dev", name); err != nil {
					return false, err.Error()
				}
			}
			return true, ""
		}).
		Add("modalias names spi driver", func(ctx context.Context) (bool, string) {
			dirs, err := p.Glob("sys/class/spidev/spidev*")
			if err != nil {
				return false, err.Error()
			}
			if len(dirs) == 0 {
				return false, "no spidev entries in sysfs"
			}
			for _, dir := range dirs {
				alias, err := p.ReadTrimmed(dir, "modalias")
				if err != nil {
					return false, err.Error()
				}
				if !strings.HasPrefix(alias, "spi:") {
					return false, alias + " is not an spi binding"
				}
			}
			return true, ""
		})

	return []*harness.Section{bus}, nil
}
