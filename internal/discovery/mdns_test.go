package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantIP       string
		wantPort     int
		wantProtocol string
	}{
		{
			name: "valid tcp bridge with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     5760,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.42")},
				Text:     []string{"device=/dev/ttyACM0", "baud=38400"},
			},
			wantNil:      false,
			wantIP:       "192.168.1.42",
			wantPort:     5760,
			wantProtocol: "tcp",
		},
		{
			name: "websocket bridge",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     []string{"proto=ws"},
			},
			wantNil:      false,
			wantIP:       "10.0.0.5",
			wantPort:     8080,
			wantProtocol: "ws",
		},
		{
			name: "unknown protocol falls back to tcp",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     5760,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     []string{"proto=udp"},
			},
			wantNil:      false,
			wantIP:       "10.0.0.5",
			wantPort:     5760,
			wantProtocol: "tcp",
		},
		{
			name: "no port specified defaults to 5760",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     0,
				AddrIPv4: []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:      false,
			wantIP:       "172.16.0.1",
			wantPort:     DefaultPort,
			wantProtocol: "tcp",
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     5760,
				AddrIPv4: []net.IP{},
				AddrIPv6: []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only bridge",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     5760,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:      false,
			wantIP:       "fe80::1",
			wantPort:     5760,
			wantProtocol: "tcp",
		},
		{
			name: "both IPv4 and IPv6 prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "gnss-bridge.local.",
				Port:     5760,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:      false,
			wantIP:       "192.168.1.50",
			wantPort:     5760,
			wantProtocol: "tcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if bridge != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", bridge)
				}
				return
			}

			if bridge == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil bridge")
			}

			if bridge.IP != tt.wantIP {
				t.Errorf("bridge.IP = %v, want %v", bridge.IP, tt.wantIP)
			}

			if bridge.Port != tt.wantPort {
				t.Errorf("bridge.Port = %v, want %v", bridge.Port, tt.wantPort)
			}

			if bridge.Protocol != tt.wantProtocol {
				t.Errorf("bridge.Protocol = %v, want %v", bridge.Protocol, tt.wantProtocol)
			}

			if bridge.Hostname != tt.entry.HostName {
				t.Errorf("bridge.Hostname = %v, want %v", bridge.Hostname, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(bridge.DiscoveredAt) > time.Second {
				t.Errorf("bridge.DiscoveredAt is not recent: %v", bridge.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		HostName: "gnss-bridge.local.",
		Port:     5760,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.42")},
		Text:     []string{"device=/dev/ttyACM0", "baud=38400", "flag", "fw=HPG 1.32"},
	}

	bridge := scanner.parseServiceEntry(entry)
	if bridge == nil {
		t.Fatal("parseServiceEntry() = nil, want bridge")
	}

	expectedMetadata := map[string]string{
		"device": "/dev/ttyACM0",
		"baud":   "38400",
		"flag":   "", // Key without value
		"fw":     "HPG 1.32",
	}

	if len(bridge.Metadata) != len(expectedMetadata) {
		t.Errorf("bridge.Metadata has %d entries, want %d", len(bridge.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := bridge.Metadata[key]; !ok {
			t.Errorf("bridge.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("bridge.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}
