package deviceconfig

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// FileInfo is an inspection view of a transaction file, built without
// touching any device. Field names carry JSON tags so the show command can
// emit it for scripting.
type FileInfo struct {
	Messages  []MessageInfo `json:"messages"`
	TotalKeys int           `json:"total_keys"`
	Groups    []GroupInfo   `json:"groups"`
	Layers    string        `json:"layers"`
}

// MessageInfo describes one apply message in the file.
type MessageInfo struct {
	Index   int         `json:"index"`
	Marker  string      `json:"marker"`
	Keys    int         `json:"keys"`
	Bytes   int         `json:"bytes"` // encoded frame size on the wire
	Entries []EntryInfo `json:"entries,omitempty"`
}

// EntryInfo describes one key/value pair.
type EntryInfo struct {
	Key   string `json:"key"`
	Group string `json:"group"`
	Size  int    `json:"size"`
	Value string `json:"value"` // hex, little-endian as on the wire
}

// GroupInfo aggregates entry counts per configuration group.
type GroupInfo struct {
	Name string `json:"name"`
	Keys int    `json:"keys"`
}

// Inspect builds a FileInfo from an apply message sequence.
func Inspect(msgs []ApplyMessage) *FileInfo {
	info := &FileInfo{}
	groupKeys := make(map[byte]int)
	var mask ubx.LayerMask

	for i, m := range msgs {
		mi := MessageInfo{
			Index:  i + 1,
			Marker: m.Marker.String(),
			Keys:   len(m.Pairs),
			Bytes:  len(m.Frame.Encode()),
		}
		if lm, _, _, err := ubx.DecodeValSet(m.Frame); err == nil {
			mask |= lm
		}
		for _, p := range m.Pairs {
			groupKeys[p.Key.Group()]++
			mi.Entries = append(mi.Entries, EntryInfo{
				Key:   p.Key.String(),
				Group: GroupName(p.Key.Group()),
				Size:  len(p.Value),
				Value: hex.EncodeToString(p.Value),
			})
		}
		info.TotalKeys += len(m.Pairs)
		info.Messages = append(info.Messages, mi)
	}

	ids := make([]int, 0, len(groupKeys))
	for id := range groupKeys {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		info.Groups = append(info.Groups, GroupInfo{
			Name: GroupName(byte(id)),
			Keys: groupKeys[byte(id)],
		})
	}

	info.Layers = formatLayerMask(mask)
	return info
}

// formatLayerMask renders a layer bitmask as "RAM+BBR+Flash" style text.
func formatLayerMask(mask ubx.LayerMask) string {
	var parts []string
	if mask&ubx.MaskRAM != 0 {
		parts = append(parts, "RAM")
	}
	if mask&ubx.MaskBBR != 0 {
		parts = append(parts, "BBR")
	}
	if mask&ubx.MaskFlash != 0 {
		parts = append(parts, "Flash")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "+")
}

// FormatCompact returns a per-group summary suitable for terminal display.
func (fi *FileInfo) FormatCompact() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Messages: %d  Keys: %d  Layers: %s\n", len(fi.Messages), fi.TotalKeys, fi.Layers)
	for _, g := range fi.Groups {
		fmt.Fprintf(&b, "  %-16s %4d\n", g.Name, g.Keys)
	}

	return b.String()
}

// FormatDetailed returns the full listing: every message with every key.
func (fi *FileInfo) FormatDetailed() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Transaction File ===\n")
	fmt.Fprintf(&b, "Messages:   %d\n", len(fi.Messages))
	fmt.Fprintf(&b, "Total keys: %d\n", fi.TotalKeys)
	fmt.Fprintf(&b, "Layers:     %s\n", fi.Layers)

	for _, m := range fi.Messages {
		fmt.Fprintf(&b, "\n--- Message %d (%s, %d keys, %d bytes) ---\n", m.Index, m.Marker, m.Keys, m.Bytes)
		for _, e := range m.Entries {
			fmt.Fprintf(&b, "  %s  %-16s %d B  %s\n", e.Key, e.Group, e.Size, e.Value)
		}
	}

	return b.String()
}
