package suite

import (
	"context"
	"strings"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

type btOptions struct {
	Adapter string `mapstructure:"adapter"`
}

func buildBluetooth(params Params) ([]*harness.Section, error) {
	opts := btOptions{Adapter: "hci0"}
	if err := params.decodeOptions("bluetooth", &opts); err != nil {
		return nil, err
	}
	p := params.Prober

	adapter := params.section("bt-adapter", "Bluetooth Adapter",
		"Adapter registration and address assignment").
		Add("bluetooth class present", func(ctx context.Context) (bool, string) {
			if !p.IsDir("sys", "class", "bluetooth") {
				return false, "no bluetooth class in sysfs"
			}
			return true, ""
		}).
		Add("adapter registered", func(ctx context.Context) (bool, string) {
			names, err := p.Devices("sys/class/bluetooth/hci*")
			if err != nil {
				return false, "no hci adapters found"
			}
			return true, strings.Join(names, ", ")
		}).
		Add("address assigned", func(ctx context.Context) (bool, string) {
			addr, err := p.ReadTrimmed("sys", "class", "bluetooth", opts.Adapter, "address")
			if err != nil {
				return false, err.Error()
			}
			if addr == "" || addr == "00:00:00:00:00:00" {
				return false, "adapter has no address"
			}
			return true, addr
		})

	rfkill := params.section("bt-rfkill", "Bluetooth RF Kill",
		"Soft and hard block state of the bluetooth radio").
		Add("rfkill class present", func(ctx context.Context) (bool, string) {
			if !p.IsDir("sys", "class", "rfkill") {
				return false, "no rfkill class in sysfs"
			}
			return true, ""
		}).
		Add("radio not soft-blocked", func(ctx context.Context) (bool, string) {
			return rfkillUnblocked(p, "soft")
		}).
		Add("radio not hard-blocked", func(ctx context.Context) (bool, string) {
			return rfkillUnblocked(p, "hard")
		})

	return []*harness.Section{adapter, rfkill}, nil
}

// rfkillUnblocked scans rfkill entries of type bluetooth and fails when any
// reports the given block attribute set.
func rfkillUnblocked(p *probe.Prober, attr string) (bool, string) {
	entries, err := p.Glob("sys/class/rfkill/rfkill*")
	if err != nil {
		return false, err.Error()
	}
	matched := 0
	for _, entry := range entries {
		kind, err := p.ReadTrimmed(entry, "type")
		if err != nil || kind != "bluetooth" {
			continue
		}
		matched++
		state, err := p.ReadTrimmed(entry, attr)
		if err != nil {
			return false, err.Error()
		}
		if state != "0" {
			return false, entry + " is " + attr + "-blocked"
		}
	}
	if matched == 0 {
		return true, "no bluetooth rfkill entry"
	}
	return true, ""
}
