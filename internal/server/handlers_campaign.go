package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/instabids/outreach/internal/campaign"
	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/repo"
	"github.com/instabids/outreach/internal/scoring"
	"github.com/instabids/outreach/internal/tier"
	"github.com/instabids/outreach/internal/types"
)

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	status := types.CampaignStatus(r.URL.Query().Get("status"))
	campaigns, err := s.deps.Campaigns.ListCampaigns(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

// handleCreateCampaign runs the full campaign setup: score the candidate
// pool, plan the tier allocation, persist the campaign with its
// checkpoints, and dispatch the initial wave of contacts.
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ErrValidation{Message: "invalid JSON body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, &ErrValidation{Message: err.Error()})
		return
	}

	ctx := r.Context()
	now := s.now()
	job := req.Job.ToJob(now)

	pool, err := s.deps.Candidates.Find(ctx, repo.Filter{
		Specialty: job.Category,
		Region:    job.Region,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := scoring.ScoreAll(ctx, pool, job)
	if err != nil {
		writeError(w, err)
		return
	}

	// Resolve each candidate's trust tier once; the plan draws from the
	// resulting per-tier pools best-scored first.
	byID := make(map[string]*types.Candidate, len(pool))
	for i := range pool {
		byID[pool[i].ID.String()] = &pool[i]
	}
	tiers := make(map[string]types.TrustTier, len(pool))
	avail := make(planning.Availability)
	for i := range pool {
		h, err := s.deps.Tiers.EngagementFor(ctx, pool[i].ID)
		if err != nil {
			writeError(w, err)
			return
		}
		t := tier.Reclassify(h)
		tiers[pool[i].ID.String()] = t
		avail[t]++
	}

	plan := planning.Plan(job, job.TargetResponses, avail, s.cfg.Rates())
	c := campaign.New(job, plan, s.cfg.CheckpointPercents, now)
	if err := s.deps.Campaigns.SaveCampaign(ctx, c); err != nil {
		writeError(w, err)
		return
	}

	dispatched := s.dispatchPlan(r, job, plan, results, byID, tiers)

	if s.deps.Runner != nil {
		// The watch outlives this request.
		s.deps.Runner.Watch(context.Background(), c.ID)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"campaign":   c,
		"job":        job,
		"dispatched": dispatched,
	})
}

// dispatchPlan contacts the top-scored candidates of each tier up to the
// plan's per-tier allocation. Duplicate pairs are no-ops by ledger
// guarantee, so retrying a failed creation is safe.
func (s *Server) dispatchPlan(r *http.Request, job *types.Job, plan *types.OutreachPlan, results []scoring.Result, byID map[string]*types.Candidate, tiers map[string]types.TrustTier) int {
	if s.deps.Dispatcher == nil {
		return 0
	}
	dispatched := 0
	remaining := make(map[types.TrustTier]int, len(plan.Allocations))
	for _, a := range plan.Allocations {
		remaining[a.Tier] = a.Requested
	}

	for _, res := range results {
		id := res.CandidateID.String()
		t, ok := tiers[id]
		if !ok || remaining[t] <= 0 {
			continue
		}
		c := byID[id]
		if _, err := s.deps.Dispatcher.Dispatch(r.Context(), job, c, res.Total, ""); err != nil {
			log.Printf("dispatch skipped for candidate %s: %v", id, err)
			continue
		}
		remaining[t]--
		dispatched++
	}
	return dispatched
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	c, err := s.deps.Campaigns.GetCampaign(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, &campaign.NotFoundError{CampaignID: id})
		return
	}

	records, err := s.deps.Ledger.ListByJob(ctx, c.JobID)
	if err != nil {
		writeError(w, err)
		return
	}

	contractors := make([]contractorStatus, 0, len(records))
	breakdown := make(map[string]*tierBreakdown)
	for _, rec := range records {
		h, err := s.deps.Tiers.EngagementFor(ctx, rec.CandidateID)
		if err != nil {
			writeError(w, err)
			return
		}
		t := tier.Reclassify(h)
		contractors = append(contractors, contractorStatus{
			CandidateID: rec.CandidateID.String(),
			Tier:        t.String(),
			Status:      string(rec.Status),
			Channel:     string(rec.Channel),
			Score:       rec.Score,
			FollowUps:   rec.FollowUps,
		})

		b, ok := breakdown[t.String()]
		if !ok {
			b = &tierBreakdown{}
			breakdown[t.String()] = b
		}
		b.Contacted++
		switch rec.Status {
		case types.StatusResponded:
			b.Responded++
		case types.StatusDeclined:
			b.Declined++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign":    c,
		"contractors": contractors,
		"breakdown":   breakdown,
	})
}

type contractorStatus struct {
	CandidateID string  `json:"candidate_id"`
	Tier        string  `json:"tier"`
	Status      string  `json:"status"`
	Channel     string  `json:"channel"`
	Score       float64 `json:"score"`
	FollowUps   int     `json:"follow_ups"`
}

type tierBreakdown struct {
	Contacted int `json:"contacted"`
	Responded int `json:"responded"`
	Declined  int `json:"declined"`
}

// handleEscalate synchronously runs one scheduler evaluation and returns
// the resulting action, if any.
func (s *Server) handleEscalate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	var avail planning.Availability
	if s.deps.Availability != nil {
		avail, err = s.deps.Availability(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	action, err := s.deps.Scheduler.Evaluate(ctx, id, avail)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.deps.Campaigns.GetCampaign(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action":   action,
		"campaign": c,
	})
}

func (s *Server) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Scheduler.Cancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if s.deps.Runner != nil {
		s.deps.Runner.Stop(id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(types.CampaignCancelled)})
}

// handleCampaignEvents streams campaign progress snapshots as SSE until
// the campaign reaches a terminal state or the client disconnects.
func (s *Server) handleCampaignEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	ew, err := newEventWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	for {
		c, err := s.deps.Campaigns.GetCampaign(ctx, id)
		if err != nil || c == nil {
			return
		}
		if err := ew.writeEvent("progress", c); err != nil {
			return
		}
		if c.Status.Terminal() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.streamInterval):
		}
	}
}
