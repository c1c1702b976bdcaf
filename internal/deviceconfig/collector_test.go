package deviceconfig

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/ubxcfg/internal/ubx"
)

var testGroup = KeyGroup{0x21, "CFG-RATE"}

func collect(t *testing.T, stream *scriptStream, position uint16) ([]ubx.KeyValue, CollectStatus, bool, error) {
	t.Helper()
	c := NewCollector(stream, ubx.LayerRAM, 50*time.Millisecond)
	return c.Collect(context.Background(), testGroup, position, time.Now().Add(time.Second))
}

func TestCollectShortPageCompletes(t *testing.T) {
	pairs := []ubx.KeyValue{
		byteKV(0x21, 1, 0x64),
		byteKV(0x21, 2, 0x01),
	}
	stream := newScriptStream(valGetResponse(ubx.LayerRAM, 0, pairs))

	got, status, full, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if full {
		t.Error("full = true, want false for short page")
	}
	if len(got) != 2 {
		t.Errorf("pairs = %d, want 2", len(got))
	}
}

func TestCollectFullPageSignalsMore(t *testing.T) {
	stream := newScriptStream(valGetResponse(ubx.LayerRAM, 0, fullPage(0x21, 0)))

	got, status, full, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if !full {
		t.Error("full = false, want true for a maximal page")
	}
	if len(got) != ubx.MaxPairsPerMessage {
		t.Errorf("pairs = %d, want %d", len(got), ubx.MaxPairsPerMessage)
	}
}

func TestCollectNakMeansEmptyGroup(t *testing.T) {
	stream := newScriptStream(ackFrame(false, ubx.ClassCFG, ubx.IDValGet))

	got, status, full, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if full {
		t.Error("full = true, want false")
	}
	if len(got) != 0 {
		t.Errorf("pairs = %d, want 0", len(got))
	}
}

func TestCollectSilenceTimesOut(t *testing.T) {
	stream := newScriptStream()

	got, status, _, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectTimeout {
		t.Errorf("status = %v, want timeout", status)
	}
	if len(got) != 0 {
		t.Errorf("pairs = %d, want 0", len(got))
	}
}

func TestCollectFiltersInterleavedTraffic(t *testing.T) {
	pairs := []ubx.KeyValue{byteKV(0x21, 1, 0x64)}
	stream := newScriptStream(
		navFrame(),
		corruptFrame(),
		valGetResponse(ubx.LayerRAM, 0, pairs),
	)

	got, status, _, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if len(got) != 1 || got[0].Key != pairs[0].Key {
		t.Errorf("pairs = %v, want the CFG-RATE pair", got)
	}
}

func TestCollectIgnoresForeignGroupsAndStalePositions(t *testing.T) {
	foreign := []ubx.KeyValue{byteKV(0x52, 1, 0x01)}
	mine := []ubx.KeyValue{byteKV(0x21, 1, 0x64)}
	stream := newScriptStream(
		valGetResponse(ubx.LayerRAM, 64, mine),   // stale position
		valGetResponse(ubx.LayerBBR, 0, mine),    // wrong layer
		valGetResponse(ubx.LayerRAM, 0, foreign), // right page, no matching group
		valGetResponse(ubx.LayerRAM, 0, mine),    // the real answer
	)

	got, status, _, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if status != CollectComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if len(got) != 1 || got[0].Key != mine[0].Key {
		t.Errorf("pairs = %v, want only the CFG-RATE pair", got)
	}
}

func TestCollectDeduplicatesLastWriteWins(t *testing.T) {
	key := mkKey(0x02, 0x21, 1)
	page := []ubx.KeyValue{
		{Key: key, Value: []byte{0x01}},
		byteKV(0x21, 2, 0x05),
		{Key: key, Value: []byte{0x09}},
	}
	stream := newScriptStream(valGetResponse(ubx.LayerRAM, 0, page))

	got, _, _, err := collect(t, stream, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("pairs = %d, want 2 after dedupe", len(got))
	}
	if got[0].Key != key || got[0].Value[0] != 0x09 {
		t.Errorf("pair 0 = %s %v, want later value 0x09 in original slot", got[0].Key, got[0].Value)
	}
}

func TestCollectCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(newScriptStream(), ubx.LayerRAM, 0)
	_, _, _, err := c.Collect(ctx, testGroup, 0, time.Now().Add(time.Second))
	if err == nil {
		t.Fatal("Collect() error = nil, want context error")
	}
}
