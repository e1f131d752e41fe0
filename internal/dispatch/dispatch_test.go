package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/types"
)

func TestChannelsPreferenceOrder(t *testing.T) {
	c := &types.Candidate{Email: "a@b.c", Phone: "+1555", Website: "https://x.y"}
	got := Channels(c)
	want := []types.Channel{types.ChannelEmail, types.ChannelSMS, types.ChannelForm}
	if len(got) != len(want) {
		t.Fatalf("got %d channels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if ch := Channels(&types.Candidate{Phone: "+1555"}); len(ch) != 1 || ch[0] != types.ChannelSMS {
		t.Errorf("phone-only candidate channels = %v", ch)
	}
}

func TestDispatchRecordsAndSends(t *testing.T) {
	sink := NewRecorder()
	led := ledger.NewMemory()
	d := New(led, sink)

	j := &types.Job{ID: uuid.New()}
	c := &types.Candidate{ID: uuid.New(), Email: "bids@shop.example"}

	rec, err := d.Dispatch(context.Background(), j, c, 77, "hello")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rec.Channel != types.ChannelEmail || rec.Score != 77 {
		t.Errorf("record = %+v", rec)
	}
	if sent := sink.Sent(); len(sent) != 1 || sent[0].Channel != types.ChannelEmail {
		t.Errorf("sink captured %+v", sent)
	}
}

func TestDispatchDuplicateIsNoop(t *testing.T) {
	sink := NewRecorder()
	d := New(ledger.NewMemory(), sink)

	j := &types.Job{ID: uuid.New()}
	c := &types.Candidate{ID: uuid.New(), Email: "bids@shop.example"}

	first, err := d.Dispatch(context.Background(), j, c, 77, "hello")
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Dispatch(context.Background(), j, c, 77, "hello again")
	if err != nil {
		t.Fatalf("duplicate dispatch should be a no-op, got %v", err)
	}
	if !second.SentAt.Equal(first.SentAt) || second.Channel != first.Channel {
		t.Error("duplicate should return the original record")
	}
	if sent := sink.Sent(); len(sent) != 1 {
		t.Errorf("duplicate reached the sink: %d sends", len(sent))
	}
}

func TestDispatchSinkFailureKeepsRecord(t *testing.T) {
	sink := NewRecorder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	led := ledger.NewMemory().WithClock(func() time.Time { return clock })
	d := New(led, sink)

	j := &types.Job{ID: uuid.New()}
	c := &types.Candidate{ID: uuid.New(), Email: "down@shop.example"}
	sink.FailFor(c.ID, errors.New("smtp unavailable"))

	rec, err := d.Dispatch(context.Background(), j, c, 66, "hello")
	if err != nil {
		t.Fatalf("sink failure should not fail dispatch: %v", err)
	}
	if rec.Status != types.StatusSent {
		t.Errorf("status = %v, want sent", rec.Status)
	}

	// The pair surfaces as a follow-up candidate once stale.
	clock = now.Add(48 * time.Hour)
	due, err := led.FollowUpCandidates(context.Background(), j.ID, 24*time.Hour, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].CandidateID != c.ID {
		t.Errorf("failed send not follow-up eligible: %+v", due)
	}
}

func TestDispatchNoChannel(t *testing.T) {
	d := New(ledger.NewMemory(), NewRecorder())
	j := &types.Job{ID: uuid.New()}
	c := &types.Candidate{ID: uuid.New(), BusinessName: "Unreachable LLC"}

	_, err := d.Dispatch(context.Background(), j, c, 50, "hello")
	var noChannel *NoChannelError
	if !errors.As(err, &noChannel) {
		t.Fatalf("expected NoChannelError, got %v", err)
	}
	if noChannel.CandidateID != c.ID {
		t.Errorf("error candidate = %v", noChannel.CandidateID)
	}
}
