package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/instabids/outreach/internal/analytics"
	"github.com/instabids/outreach/internal/types"
)

type statusUpdateRequest struct {
	Status types.DistributionStatus `json:"status"`
}

// handleUpdateStatus records an open/response/decline reported by a
// message channel. Transitions only move forward; a backwards update is
// rejected with 409.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		writeError(w, err)
		return
	}
	candidateID, err := pathUUID(r, "candidate_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ErrValidation{Message: "invalid JSON body: " + err.Error()})
		return
	}
	switch req.Status {
	case types.StatusOpened, types.StatusResponded, types.StatusDeclined:
	default:
		writeError(w, &ErrValidation{Message: "status must be opened, responded, or declined"})
		return
	}

	rec, err := s.deps.Ledger.UpdateStatus(r.Context(), jobID, candidateID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleFollowUps lists unresponsive, highest-scoring leads for a job
// that are due another touch.
func (s *Server) handleFollowUps(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	maxAge := time.Duration(s.cfg.FollowUpMaxAgeHours) * time.Hour
	records, err := s.deps.Ledger.FollowUpCandidates(r.Context(), jobID, maxAge, s.cfg.MaxFollowUps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"followups": records})
}

// handleDemote applies an explicit manual tier demotion, the only
// downward tier transition the system permits.
func (s *Server) handleDemote(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req types.DemoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ErrValidation{Message: "invalid JSON body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, &ErrValidation{Message: err.Error()})
		return
	}
	tier, err := types.ParseTier(req.Tier)
	if err != nil {
		writeError(w, &ErrValidation{Message: err.Error()})
		return
	}

	if err := s.deps.Tiers.SetManualTier(r.Context(), candidateID, tier, req.Reason, req.Actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"candidate_id": candidateID.String(),
		"tier":         tier.String(),
	})
}

// handleAnalytics reports open/response/interest rates by channel and
// score bucket across all recorded distributions.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Ledger.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(records))
}
