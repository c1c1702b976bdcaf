// Package config provides user configuration management for ubxcfg.
//
// This package manages a YAML-based configuration file that stores named
// receiver connection profiles (endpoint, baud rate, device generation) and
// application preferences. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ubxcfg/config.yaml or $HOME/.config/ubxcfg/config.yaml
//   - macOS: $HOME/.config/ubxcfg/config.yaml
//   - Windows: %LOCALAPPDATA%\ubxcfg\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update a receiver profile
//	profile := registry.EnsureProfile("rover")
//	profile.Endpoint = "/dev/ttyACM0"
//	profile.BaudRate = 115200
//	profile.Generation = "gen9-rtk"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
