package ubx

import "testing"

func TestKeyIDFields(t *testing.T) {
	tests := []struct {
		name      string
		key       KeyID
		wantGroup byte
		wantItem  uint16
		wantSize  int
	}{
		{"CFG-RATE-MEAS (2 bytes)", 0x30210001, 0x21, 0x001, 2},
		{"CFG-NAVSPG-FIXMODE (1 byte)", 0x20110011, 0x11, 0x011, 1},
		{"CFG-UART1-BAUDRATE (4 bytes)", 0x40520001, 0x52, 0x001, 4},
		{"CFG-NAVSPG bit key (1 byte)", 0x10110013, 0x11, 0x013, 1},
		{"8 byte key", 0x50030001, 0x03, 0x001, 8},
		{"reserved size code", 0x60210001, 0x21, 0x001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Group(); got != tt.wantGroup {
				t.Errorf("Group() = 0x%02X, want 0x%02X", got, tt.wantGroup)
			}
			if got := tt.key.Item(); got != tt.wantItem {
				t.Errorf("Item() = 0x%03X, want 0x%03X", got, tt.wantItem)
			}
			if got := tt.key.Size(); got != tt.wantSize {
				t.Errorf("Size() = %d, want %d", got, tt.wantSize)
			}
		})
	}
}

func TestGroupWildcard(t *testing.T) {
	w := GroupWildcard(0x21)
	if !w.IsWildcard() {
		t.Error("IsWildcard() = false, want true")
	}
	if w.Group() != 0x21 {
		t.Errorf("Group() = 0x%02X, want 0x21", w.Group())
	}
	if uint32(w) != 0x0021FFFF {
		t.Errorf("wildcard = 0x%08X, want 0x0021FFFF", uint32(w))
	}

	if KeyID(0x30210001).IsWildcard() {
		t.Error("concrete key reported as wildcard")
	}
}

func TestKeyIDString(t *testing.T) {
	if got := KeyID(0x30210001).String(); got != "0x30210001" {
		t.Errorf("String() = %s, want 0x30210001", got)
	}
}
