package config

import "time"

// Registry represents the entire user configuration file.
// It stores named receiver profiles and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile represents a saved receiver connection profile. A profile captures
// everything needed to reconnect to a particular receiver without retyping
// flags: the endpoint, serial parameters, and the device generation that
// selects the key group catalog.
type Profile struct {
	Endpoint   string    `yaml:"endpoint"`              // Serial device path, tcp:// or ws:// URL
	BaudRate   int       `yaml:"baudrate,omitempty"`    // Serial baud rate (ignored for network endpoints)
	Generation string    `yaml:"generation,omitempty"`  // Device class name (e.g. "gen9", "gen10")
	Nickname   string    `yaml:"nickname,omitempty"`    // User-friendly name
	LastUsed   time.Time `yaml:"last_used,omitempty"`   // Last time this profile was selected
	GroupWait  string    `yaml:"group_wait,omitempty"`  // Per-group poll wait override (duration string)
	AckTimeout string    `yaml:"ack_timeout,omitempty"` // Acknowledgement wait override (duration string)
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultProfile  string `yaml:"default_profile,omitempty"` // Profile used when none is named
	ScanTimeout     int    `yaml:"scan_timeout"`              // mDNS bridge scan timeout in seconds
	ColorOutput     bool   `yaml:"color_output"`              // Enable styled terminal output
	DefaultOutfile  string `yaml:"default_outfile,omitempty"` // Template for save file names
	DefaultBaudRate int    `yaml:"default_baudrate"`          // Baud rate when a profile has none
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Profiles: make(map[string]*Profile),
		Preferences: &Preferences{
			ScanTimeout:     10,
			ColorOutput:     true,
			DefaultBaudRate: 38400,
		},
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// EnsureProfile ensures a profile entry exists in the registry.
// If the profile doesn't exist, creates a new entry with default values.
// Returns the profile entry (existing or newly created).
func (r *Registry) EnsureProfile(name string) *Profile {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}

	if profile, exists := r.Profiles[name]; exists {
		return profile
	}

	profile := &Profile{}
	r.Profiles[name] = profile
	return profile
}

// TouchProfile updates the last-used timestamp and endpoint for a profile.
func (r *Registry) TouchProfile(name, endpoint string) {
	profile := r.EnsureProfile(name)
	profile.LastUsed = time.Now()
	if endpoint != "" {
		profile.Endpoint = endpoint
	}
}

// SetProfileNickname sets a user-friendly nickname for a profile.
func (r *Registry) SetProfileNickname(name, nickname string) {
	profile := r.EnsureProfile(name)
	profile.Nickname = nickname
}

// DefaultProfile returns the profile named by the preferences, or nil when
// none is configured.
func (r *Registry) DefaultProfile() *Profile {
	if r.Preferences == nil || r.Preferences.DefaultProfile == "" {
		return nil
	}
	return r.Profiles[r.Preferences.DefaultProfile]
}
