package discovery

import (
	"testing"
	"time"
)

func TestBridge_String(t *testing.T) {
	bridge := &Bridge{
		Name:     "rover-usb",
		Hostname: "gnss-bridge.local.",
		IP:       "192.168.1.42",
		Port:     5760,
	}

	expected := "Bridge rover-usb (gnss-bridge.local.) at 192.168.1.42:5760"
	if bridge.String() != expected {
		t.Errorf("Bridge.String() = %v, want %v", bridge.String(), expected)
	}
}

func TestBridge_Endpoint(t *testing.T) {
	tests := []struct {
		name     string
		bridge   *Bridge
		expected string
	}{
		{
			name: "tcp bridge",
			bridge: &Bridge{
				IP:       "192.168.1.42",
				Port:     5760,
				Protocol: "tcp",
			},
			expected: "tcp://192.168.1.42:5760",
		},
		{
			name: "websocket bridge",
			bridge: &Bridge{
				IP:       "10.0.0.5",
				Port:     8080,
				Protocol: "ws",
			},
			expected: "ws://10.0.0.5:8080",
		},
		{
			name: "missing protocol defaults to tcp",
			bridge: &Bridge{
				IP:   "10.0.0.5",
				Port: 5760,
			},
			expected: "tcp://10.0.0.5:5760",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bridge.Endpoint(); got != tt.expected {
				t.Errorf("Bridge.Endpoint() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBridge_GetMetadata(t *testing.T) {
	bridge := &Bridge{
		Metadata: map[string]string{
			"device": "/dev/ttyACM0",
			"baud":   "38400",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "existing key",
			key:      "device",
			expected: "/dev/ttyACM0",
		},
		{
			name:     "another existing key",
			key:      "baud",
			expected: "38400",
		},
		{
			name:     "non-existent key",
			key:      "missing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bridge.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Bridge.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestBridge_GetMetadata_NilMap(t *testing.T) {
	bridge := &Bridge{
		Metadata: nil,
	}

	if got := bridge.GetMetadata("anything"); got != "" {
		t.Errorf("Bridge.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestBridge_DiscoveredAt(t *testing.T) {
	now := time.Now()
	bridge := &Bridge{
		Name:         "rover-usb",
		DiscoveredAt: now,
	}

	if bridge.DiscoveredAt != now {
		t.Errorf("Bridge.DiscoveredAt = %v, want %v", bridge.DiscoveredAt, now)
	}
}
