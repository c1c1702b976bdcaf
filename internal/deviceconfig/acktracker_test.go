package deviceconfig

import "testing"

func TestAckTrackerLifecycle(t *testing.T) {
	tr := NewAckTracker()

	if tr.InFlight() != nil {
		t.Error("InFlight() != nil on empty tracker")
	}

	if err := tr.Send(0, "CFG-VALSET"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if rec := tr.InFlight(); rec == nil || rec.State != StateSent {
		t.Fatalf("InFlight() = %v, want sent record", rec)
	}

	rec, err := tr.Resolve(true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rec.State != StateAcked {
		t.Errorf("state = %s, want acked", rec.State)
	}
	if tr.InFlight() != nil {
		t.Error("InFlight() != nil after resolve")
	}
}

func TestAckTrackerSingleInFlight(t *testing.T) {
	tr := NewAckTracker()

	if err := tr.Send(0, "CFG-VALSET"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := tr.Send(1, "CFG-VALSET"); err == nil {
		t.Fatal("second Send() error = nil, want in-flight error")
	}
}

func TestAckTrackerResolveWithoutSend(t *testing.T) {
	tr := NewAckTracker()
	if _, err := tr.Resolve(true); err == nil {
		t.Error("Resolve() error = nil, want error")
	}
	if _, err := tr.Expire(); err == nil {
		t.Error("Expire() error = nil, want error")
	}
}

func TestAckTrackerCountsAndFirstFailure(t *testing.T) {
	tr := NewAckTracker()

	tr.Send(0, "CFG-VALSET")
	tr.Resolve(true)
	tr.Send(1, "CFG-VALSET")
	tr.Resolve(false)
	tr.Send(2, "CFG-VALSET")
	tr.Expire()

	acked, naked, expired := tr.Counts()
	if acked != 1 || naked != 1 || expired != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 1/1/1", acked, naked, expired)
	}

	f := tr.FirstFailure()
	if f == nil || f.Index != 1 || f.State != StateNaked {
		t.Errorf("FirstFailure() = %+v, want naked record at index 1", f)
	}

	if got := len(tr.Records()); got != 3 {
		t.Errorf("Records() = %d, want 3", got)
	}
}

func TestAckStateString(t *testing.T) {
	tests := []struct {
		state AckState
		want  string
	}{
		{StateSent, "sent"},
		{StateAcked, "acked"},
		{StateNaked, "naked"},
		{StateExpired, "expired"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
