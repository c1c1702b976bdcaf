package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "ubxcfg") {
		t.Errorf("GetConfigDir() = %v, should contain 'ubxcfg'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME applies to Unix-like systems only")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join("/tmp/xdg-test", "ubxcfg") {
		t.Errorf("GetConfigDir() = %v, want /tmp/xdg-test/ubxcfg", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Profiles == nil {
		t.Error("NewRegistry().Profiles should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.ScanTimeout != 10 {
		t.Errorf("ScanTimeout = %v, want 10", reg.Preferences.ScanTimeout)
	}
	if reg.Preferences.DefaultBaudRate != 38400 {
		t.Errorf("DefaultBaudRate = %v, want 38400", reg.Preferences.DefaultBaudRate)
	}
}

func TestRegistryEnsureProfile(t *testing.T) {
	reg := NewRegistry()

	profile1 := reg.EnsureProfile("rover")
	if profile1 == nil {
		t.Fatal("EnsureProfile() returned nil")
	}

	profile2 := reg.EnsureProfile("rover")
	if profile1 != profile2 {
		t.Error("EnsureProfile() should return same instance for same name")
	}

	profile3 := reg.EnsureProfile("base")
	if profile1 == profile3 {
		t.Error("EnsureProfile() should create new instance for different name")
	}
}

func TestRegistryTouchProfile(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.TouchProfile("rover", "/dev/ttyACM0")
	after := time.Now()

	profile := reg.GetProfile("rover")
	if profile == nil {
		t.Fatal("Profile should exist after TouchProfile()")
	}
	if profile.Endpoint != "/dev/ttyACM0" {
		t.Errorf("Endpoint = %v, want /dev/ttyACM0", profile.Endpoint)
	}
	if profile.LastUsed.Before(before) || profile.LastUsed.After(after) {
		t.Errorf("LastUsed = %v, should be between %v and %v", profile.LastUsed, before, after)
	}

	// Touching with an empty endpoint keeps the stored one.
	reg.TouchProfile("rover", "")
	if profile.Endpoint != "/dev/ttyACM0" {
		t.Errorf("Endpoint = %v after empty touch, want /dev/ttyACM0", profile.Endpoint)
	}
}

func TestRegistryDefaultProfile(t *testing.T) {
	reg := NewRegistry()

	if reg.DefaultProfile() != nil {
		t.Error("DefaultProfile() should be nil when none configured")
	}

	profile := reg.EnsureProfile("rover")
	profile.Endpoint = "tcp://192.168.1.42:5760"
	reg.Preferences.DefaultProfile = "rover"

	if got := reg.DefaultProfile(); got != profile {
		t.Errorf("DefaultProfile() = %v, want the rover profile", got)
	}
}

func TestRegistryYAMLRoundtrip(t *testing.T) {
	reg := NewRegistry()
	profile := reg.EnsureProfile("base-station")
	profile.Endpoint = "/dev/ttyUSB0"
	profile.BaudRate = 115200
	profile.Generation = "gen9-rtk"
	profile.Nickname = "Roof antenna"
	reg.SetProfileNickname("base-station", "Roof antenna")
	reg.Preferences.DefaultProfile = "base-station"

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if loaded.Version != 1 {
		t.Errorf("loaded version = %v, want 1", loaded.Version)
	}
	got := loaded.GetProfile("base-station")
	if got == nil {
		t.Fatal("profile missing after roundtrip")
	}
	if got.Endpoint != "/dev/ttyUSB0" || got.BaudRate != 115200 || got.Generation != "gen9-rtk" {
		t.Errorf("profile = %+v, lost fields in roundtrip", got)
	}
	if loaded.Preferences.DefaultProfile != "base-station" {
		t.Errorf("DefaultProfile = %v, want base-station", loaded.Preferences.DefaultProfile)
	}
}
