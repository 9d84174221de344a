package suite

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ping/ping"
	"github.com/miekg/dns"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/probe"
)

const (
	wifiPingTimeout = 5 * time.Second
	wifiDNSTimeout  = 3 * time.Second
)

type wifiOptions struct {
	Interface  string `mapstructure:"interface"`
	Gateway    string `mapstructure:"gateway"`
	DNSServer  string `mapstructure:"dns_server"`
	Hostname   string `mapstructure:"hostname"`
	PingCount  int    `mapstructure:"ping_count"`
	Privileged bool   `mapstructure:"privileged"`
}

func defaultWiFiOptions() wifiOptions {
	return wifiOptions{
		Interface: "wlan0",
		Hostname:  "example.com",
		PingCount: 3,
	}
}

func buildWiFi(params Params) ([]*harness.Section, error) {
	opts := defaultWiFiOptions()
	if err := params.decodeOptions("wifi", &opts); err != nil {
		return nil, err
	}
	if opts.PingCount <= 0 {
		return nil, fmt.Errorf("ping_count must be positive")
	}
	p := params.Prober
	ifaceDir := []string{"sys", "class", "net", opts.Interface}

	link := params.section("wifi-link", "WiFi Link State",
		"Interface registration and link status").
		Add("interface present", func(ctx context.Context) (bool, string) {
			if p.IsDir(ifaceDir...) {
				return true, opts.Interface
			}
			known, err := p.Subdirs("sys/class/net")
			if err != nil {
				return false, fmt.Sprintf("%s missing, no interfaces registered", opts.Interface)
			}
			return false, fmt.Sprintf("%s missing, have %s", opts.Interface, strings.Join(known, ", "))
		}).
		Add("wireless capable", func(ctx context.Context) (bool, string) {
			if !p.IsDir(append(ifaceDir, "wireless")...) {
				return false, opts.Interface + " is not a wireless interface"
			}
			return true, ""
		}).
		Add("link up", func(ctx context.Context) (bool, string) {
			state, err := p.ReadTrimmed(append(ifaceDir, "operstate")...)
			if err != nil {
				return false, err.Error()
			}
			if state != "up" {
				return false, "operstate " + state
			}
			return true, ""
		}).
		Add("carrier detected", func(ctx context.Context) (bool, string) {
			carrier, err := p.ReadInt(append(ifaceDir, "carrier")...)
			if err != nil {
				return false, err.Error()
			}
			if carrier != 1 {
				return false, fmt.Sprintf("carrier %d", carrier)
			}
			return true, ""
		})

	connect := params.section("wifi-connect", "WiFi Connectivity",
		"Gateway reachability and name resolution").
		Add("gateway reachable", func(ctx context.Context) (bool, string) {
			gw := opts.Gateway
			if gw == "" {
				var ok bool
				gw, ok = defaultGateway(p, opts.Interface)
				if !ok {
					return false, "no default route on " + opts.Interface
				}
			}
			pinger, err := ping.NewPinger(gw)
			if err != nil {
				return false, fmt.Sprintf("init pinger: %v", err)
			}
			pinger.SetPrivileged(opts.Privileged)
			pinger.Count = opts.PingCount
			pinger.Timeout = wifiPingTimeout
			pinger.Run() // blocking
			stats := pinger.Statistics()
			if stats.PacketsRecv == 0 {
				return false, "no replies from " + gw
			}
			return true, fmt.Sprintf("%d/%d replies from %s, avg rtt %s",
				stats.PacketsRecv, stats.PacketsSent, gw, stats.AvgRtt.Round(time.Microsecond))
		}).
		Add("dns resolves", func(ctx context.Context) (bool, string) {
			server := opts.DNSServer
			if server == "" {
				var ok bool
				server, ok = nameserver(p)
				if !ok {
					return false, "no nameserver configured"
				}
			}
			client := &dns.Client{Timeout: wifiDNSTimeout}
			msg := new(dns.Msg)
			msg.SetQuestion(dns.Fqdn(opts.Hostname), dns.TypeA)
			msg.RecursionDesired = true
			resp, rtt, err := client.ExchangeContext(ctx, msg, server)
			if err != nil {
				return false, fmt.Sprintf("query %s via %s: %v", opts.Hostname, server, err)
			}
			if resp.Rcode != dns.RcodeSuccess {
				return false, fmt.Sprintf("rcode %s for %s", dns.RcodeToString[resp.Rcode], opts.Hostname)
			}
			if len(resp.Answer) == 0 {
				return false, "no answers for " + opts.Hostname
			}
			return true, fmt.Sprintf("%d answer(s) in %s", len(resp.Answer), rtt.Round(time.Microsecond))
		})

	return []*harness.Section{link, connect}, nil
}

// defaultGateway returns the gateway of the first default route bound to
// iface. The kernel's route table stores addresses as little-endian hex.
func defaultGateway(p *probe.Prober, iface string) (string, bool) {
	raw, err := p.ReadTrimmed("proc", "net", "route")
	if err != nil {
		return "", false
	}
	for i, line := range strings.Split(raw, "\n") {
		if i == 0 {
			continue // header row
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != iface || fields[1] != "00000000" {
			continue
		}
		if ip, ok := parseRouteAddr(fields[2]); ok {
			return ip, true
		}
	}
	return "", false
}

func parseRouteAddr(hex string) (string, bool) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", false
	}
	ip := net.IPv4(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	return ip.String(), true
}

// nameserver returns the first resolv.conf nameserver as host:port.
func nameserver(p *probe.Prober) (string, bool) {
	raw, err := p.ReadTrimmed("etc", "resolv.conf")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			return net.JoinHostPort(fields[1], "53"), true
		}
	}
	return "", false
}
