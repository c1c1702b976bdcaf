// Package discovery provides mDNS-based discovery of serial-over-network
// bridges.
//
// A receiver is usually plugged into a local serial port, but it can also sit
// behind a bridge that exposes its serial port over raw TCP or a WebSocket.
// Bridges advertise themselves via multicast DNS using the "_ubxbridge._tcp"
// service type; this package locates them so the user does not have to know
// their addresses.
//
// # Usage Example
//
//	// Discover bridges with 10-second timeout
//	bridges, err := discovery.ScanForBridges(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, bridge := range bridges {
//	    fmt.Printf("Found: %s -> %s\n", bridge.Name, bridge.Endpoint())
//	}
//
// # Bridge Information
//
// Each discovered bridge includes its instance name, hostname, address,
// port, and the TXT record metadata. Common TXT keys are "device" (the
// serial port behind the bridge), "baud", and "proto" ("tcp" or "ws").
// Bridge.Endpoint() yields a URL that transport.Open accepts directly.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
