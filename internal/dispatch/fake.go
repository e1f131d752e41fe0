package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

// SentMessage is one captured send.
type SentMessage struct {
	CandidateID uuid.UUID
	JobID       uuid.UUID
	Channel     types.Channel
	Message     string
}

// Recorder is a Sink that captures sends instead of delivering them.
// Used by tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	sent    []SentMessage
	failFor map[uuid.UUID]error
}

// NewRecorder returns an empty recording sink.
func NewRecorder() *Recorder {
	return &Recorder{failFor: make(map[uuid.UUID]error)}
}

// FailFor makes sends to the given candidate return err.
func (r *Recorder) FailFor(candidateID uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[candidateID] = err
}

// Send captures the message and returns a synthetic tracking id.
func (r *Recorder) Send(_ context.Context, c *types.Candidate, j *types.Job, channel types.Channel, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[c.ID]; ok {
		return "", err
	}
	r.sent = append(r.sent, SentMessage{
		CandidateID: c.ID,
		JobID:       j.ID,
		Channel:     channel,
		Message:     message,
	})
	return fmt.Sprintf("msg-%d", len(r.sent)), nil
}

// Sent returns a copy of all captured sends.
func (r *Recorder) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// LogSink logs sends instead of delivering them. It stands in until a
// real channel provider is wired behind the Sink contract.
type LogSink struct{}

// Send logs the outgoing message and returns a synthetic tracking id.
func (LogSink) Send(_ context.Context, c *types.Candidate, j *types.Job, channel types.Channel, _ string) (string, error) {
	id := uuid.NewString()
	log.Printf("send job=%s candidate=%s channel=%s msg_id=%s", j.ID, c.ID, channel, id)
	return id, nil
}
