package deviceconfig

import (
	"bytes"
	"context"
	"testing"

	"github.com/muurk/ubxcfg/internal/ubx"
)

func TestParseMessageSet(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{name: "minnmea", want: 5},
		{name: "allnmea", want: 15},
		{name: "minubx", want: 3},
		{name: "allubx", want: 15},
		{name: "everything", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := ParseMessageSet(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("ParseMessageSet() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMessageSet() error = %v", err)
			}
			if len(msgs) != tt.want {
				t.Errorf("set size = %d, want %d", len(msgs), tt.want)
			}
		})
	}
}

func TestMessageRateIdentity(t *testing.T) {
	m := MessageRate{Class: 0xF0, ID: 0x00}
	if got := m.Identity(); got != "CFG-MSG F0-00" {
		t.Errorf("Identity() = %q, want %q", got, "CFG-MSG F0-00")
	}
}

func TestRateSetterAppliesAll(t *testing.T) {
	msgs, err := ParseMessageSet("minnmea")
	if err != nil {
		t.Fatal(err)
	}

	chunks := make([][]byte, len(msgs))
	for i := range chunks {
		chunks[i] = ackFrame(true, ubx.ClassCFG, ubx.IDCfgMsg)
	}
	stream := newScriptStream(chunks...)

	var progress []int
	opts := loaderOpts()
	opts.Progress = func(done, total int) { progress = append(progress, done) }

	report, err := NewRateSetter(stream, opts).Run(context.Background(), msgs, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Complete || report.Acked != len(msgs) {
		t.Errorf("report = %+v, want complete with %d acked", report, len(msgs))
	}
	if len(progress) != len(msgs) {
		t.Errorf("progress calls = %d, want %d", len(progress), len(msgs))
	}

	// Every rate change must have gone out, in order.
	var want bytes.Buffer
	for _, m := range msgs {
		want.Write(ubx.EncodeMsgRate(m.Class, m.ID, 2).Encode())
	}
	if !bytes.Equal(stream.writes, want.Bytes()) {
		t.Error("wire bytes differ from encoded rate change sequence")
	}
}

func TestRateSetterAbortsOnNak(t *testing.T) {
	msgs := []MessageRate{
		{Class: 0xF0, ID: 0x00},
		{Class: 0xF0, ID: 0x01},
		{Class: 0xF0, ID: 0x02},
	}
	stream := newScriptStream(
		ackFrame(true, ubx.ClassCFG, ubx.IDCfgMsg),
		ackFrame(false, ubx.ClassCFG, ubx.IDCfgMsg),
	)

	report, err := NewRateSetter(stream, loaderOpts()).Run(context.Background(), msgs, 0)
	if !IsNakError(err) {
		t.Fatalf("Run() error = %v, want rejection", err)
	}
	if report.Acked != 1 || report.Naked != 1 {
		t.Errorf("report = %+v, want 1 acked / 1 naked", report)
	}
	if f := report.FirstFailure; f == nil || f.Index != 1 || f.State != StateNaked {
		t.Errorf("FirstFailure = %+v, want naked at index 1", f)
	}

	// Nothing after the rejected change goes on the wire.
	var sent bytes.Buffer
	sent.Write(ubx.EncodeMsgRate(0xF0, 0x00, 0).Encode())
	sent.Write(ubx.EncodeMsgRate(0xF0, 0x01, 0).Encode())
	if !bytes.Equal(stream.writes, sent.Bytes()) {
		t.Error("rate changes after the rejection were transmitted")
	}
}

func TestRateSetterAbortsOnAckTimeout(t *testing.T) {
	msgs := []MessageRate{
		{Class: 0xF0, ID: 0x00},
		{Class: 0xF0, ID: 0x01},
	}
	stream := newScriptStream(ackFrame(true, ubx.ClassCFG, ubx.IDCfgMsg))

	report, err := NewRateSetter(stream, loaderOpts()).Run(context.Background(), msgs, 1)
	if !IsTimeoutError(err) {
		t.Fatalf("Run() error = %v, want timeout", err)
	}
	if report.Acked != 1 || report.Expired != 1 {
		t.Errorf("report = %+v, want 1 acked / 1 expired", report)
	}
}

func TestRateSetterSkipsUnrelatedTraffic(t *testing.T) {
	msgs := []MessageRate{{Class: 0xF0, ID: 0x00}}

	stream := newScriptStream(
		navFrame(),
		ackFrame(true, ubx.ClassCFG, ubx.IDValSet), // ack for a config load
		ackFrame(true, ubx.ClassCFG, ubx.IDCfgMsg),
	)

	report, err := NewRateSetter(stream, loaderOpts()).Run(context.Background(), msgs, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Complete {
		t.Errorf("report = %+v, want complete", report)
	}
}
