package deviceconfig

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/muurk/ubxcfg/internal/ubx"
)

func inspectFixture(t *testing.T) *FileInfo {
	t.Helper()
	snap := snapshotOf(
		ConfigEntry{Key: mkKey(0x03, 0x21, 1), Value: []byte{0xE8, 0x03}},
		ConfigEntry{Key: mkKey(0x02, 0x11, 0x11), Value: []byte{0x03}},
		ConfigEntry{Key: mkKey(0x02, 0x11, 0x12), Value: []byte{0x01}},
	)
	msgs, err := Assemble(snap, ubx.MaskRAM|ubx.MaskBBR, DefaultMaxPayload)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return Inspect(msgs)
}

func TestInspect(t *testing.T) {
	info := inspectFixture(t)

	if info.TotalKeys != 3 {
		t.Errorf("TotalKeys = %d, want 3", info.TotalKeys)
	}
	if len(info.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(info.Messages))
	}
	if info.Messages[0].Marker != "only" {
		t.Errorf("marker = %s, want only", info.Messages[0].Marker)
	}
	if info.Layers != "RAM+BBR" {
		t.Errorf("Layers = %s, want RAM+BBR", info.Layers)
	}

	// Groups are aggregated and sorted by id: CFG-NAVSPG (0x11) first.
	if len(info.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(info.Groups))
	}
	if info.Groups[0].Name != "CFG-NAVSPG" || info.Groups[0].Keys != 2 {
		t.Errorf("group 0 = %+v, want CFG-NAVSPG with 2 keys", info.Groups[0])
	}
	if info.Groups[1].Name != "CFG-RATE" || info.Groups[1].Keys != 1 {
		t.Errorf("group 1 = %+v, want CFG-RATE with 1 key", info.Groups[1])
	}
}

func TestFileInfoFormats(t *testing.T) {
	info := inspectFixture(t)

	compact := info.FormatCompact()
	for _, want := range []string{"Messages: 1", "Keys: 3", "CFG-RATE", "CFG-NAVSPG"} {
		if !strings.Contains(compact, want) {
			t.Errorf("FormatCompact() missing %q:\n%s", want, compact)
		}
	}

	detailed := info.FormatDetailed()
	for _, want := range []string{"Message 1 (only", "0x30210001", "e803"} {
		if !strings.Contains(detailed, want) {
			t.Errorf("FormatDetailed() missing %q:\n%s", want, detailed)
		}
	}
}

func TestFileInfoJSON(t *testing.T) {
	data, err := json.Marshal(inspectFixture(t))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"messages", "total_keys", "groups", "layers"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing %q field", key)
		}
	}
}
