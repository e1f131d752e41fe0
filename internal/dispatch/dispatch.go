// Package dispatch defines the narrow contract to external message
// channels and the glue that records attempts in the ledger before
// sending. Message content construction and actual delivery live
// outside this core.
package dispatch

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/types"
)

// Sink delivers one message over one channel. Implementations wrap
// email/SMS/form providers; the core only needs an opaque tracking id
// and success/failure.
type Sink interface {
	Send(ctx context.Context, c *types.Candidate, j *types.Job, channel types.Channel, message string) (string, error)
}

// Channels returns the candidate's usable contact channels in preference
// order: email, then sms, then website form.
func Channels(c *types.Candidate) []types.Channel {
	out := make([]types.Channel, 0, 3)
	if c.Email != "" {
		out = append(out, types.ChannelEmail)
	}
	if c.Phone != "" {
		out = append(out, types.ChannelSMS)
	}
	if c.Website != "" {
		out = append(out, types.ChannelForm)
	}
	return out
}

// Dispatcher records attempts in the ledger and hands them to the sink.
type Dispatcher struct {
	ledger ledger.Ledger
	sink   Sink
}

// New builds a dispatcher over a ledger and a sink.
func New(l ledger.Ledger, s Sink) *Dispatcher {
	return &Dispatcher{ledger: l, sink: s}
}

// Dispatch contacts one candidate for one job over its preferred channel.
//
// The ledger write happens first: if the pair was already distributed the
// call is a no-op returning the existing record, however many times
// upstream retries. A sink failure leaves the record in place so the
// pair surfaces later as a follow-up candidate instead of being lost.
func (d *Dispatcher) Dispatch(ctx context.Context, j *types.Job, c *types.Candidate, score float64, message string) (*types.DistributionRecord, error) {
	channels := Channels(c)
	if len(channels) == 0 {
		return nil, &NoChannelError{CandidateID: c.ID}
	}
	channel := channels[0]

	rec, err := d.ledger.RecordAttempt(ctx, j.ID, c.ID, channel, score)
	if err != nil {
		var dup *ledger.AlreadyDistributedError
		if errors.As(err, &dup) {
			return dup.Record, nil
		}
		return nil, err
	}

	if _, sendErr := d.sink.Send(ctx, c, j, channel, message); sendErr != nil {
		log.Printf("dispatch failed for job=%s candidate=%s channel=%s: %v", j.ID, c.ID, channel, sendErr)
	}
	return rec, nil
}

// NoChannelError reports a candidate with no contact channel at all.
type NoChannelError struct {
	CandidateID uuid.UUID
}

func (e *NoChannelError) Error() string {
	return "candidate " + e.CandidateID.String() + " has no contact channel"
}
