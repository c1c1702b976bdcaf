package discovery

import (
	"fmt"
	"time"
)

// Bridge represents a discovered serial-over-network bridge on the local
// network. Bridges expose a receiver's serial port over raw TCP or a
// WebSocket and advertise themselves via mDNS.
type Bridge struct {
	// Name is the mDNS instance name (e.g., "rover-usb")
	Name string

	// Hostname is the mDNS hostname (e.g., "gnss-bridge.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.42")
	IP string

	// Port is the bridge's TCP or WebSocket port
	Port int

	// Protocol is "tcp" or "ws", taken from the TXT records
	Protocol string

	// Metadata contains additional mDNS TXT record data
	// Common fields: "device=/dev/ttyACM0", "baud=38400"
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Bridge %s (%s) at %s:%d", b.Name, b.Hostname, b.IP, b.Port)
}

// Endpoint returns the transport endpoint URL for the bridge, suitable for
// passing straight to transport.Open.
func (b *Bridge) Endpoint() string {
	if b.Protocol == "ws" {
		return fmt.Sprintf("ws://%s:%d", b.IP, b.Port)
	}
	return fmt.Sprintf("tcp://%s:%d", b.IP, b.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
