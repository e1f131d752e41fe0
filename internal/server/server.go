package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/campaign"
	"github.com/instabids/outreach/internal/config"
	"github.com/instabids/outreach/internal/dispatch"
	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/repo"
	"github.com/instabids/outreach/internal/server/ratelimit"
	"github.com/instabids/outreach/internal/types"
)

// CampaignStore is campaign persistence plus listing for the read API.
type CampaignStore interface {
	campaign.Store
	ListCampaigns(ctx context.Context, status types.CampaignStatus) ([]types.Campaign, error)
}

// Ledger extends the core ledger with the full listing analytics needs.
type Ledger interface {
	ledger.Ledger
	ListAll(ctx context.Context) ([]types.DistributionRecord, error)
}

// TierService answers engagement history lookups and records manual
// tier overrides.
type TierService interface {
	EngagementFor(ctx context.Context, candidateID uuid.UUID) (types.EngagementHistory, error)
	SetManualTier(ctx context.Context, candidateID uuid.UUID, tier types.TrustTier, reason, actor string) error
}

// Deps are the collaborators the server is wired with. Both the
// PostgreSQL layer and the in-memory implementations satisfy them.
type Deps struct {
	Campaigns  CampaignStore
	Ledger     Ledger
	Candidates repo.Source
	Tiers      TierService
	Scheduler  *campaign.Scheduler
	Dispatcher *dispatch.Dispatcher
	// Availability reports per-tier candidate capacity for a campaign.
	Availability campaign.AvailabilityFunc
	// Runner, when set, starts watching newly created campaigns.
	Runner *campaign.Runner
}

// Server is the HTTP operator API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	cfg        *config.Config
	jwt        *JWTService
	limiter    *ratelimit.Limiter
	now        func() time.Time

	// streamInterval drives the SSE poll cadence; shortened in tests.
	streamInterval time.Duration
}

// New creates a server over the given collaborators.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		deps:           deps,
		cfg:            cfg,
		jwt:            NewJWTService(cfg.JWTSecret, 0),
		limiter:        ratelimit.NewLimiter(10, 0.5),
		now:            time.Now,
		streamInterval: 5 * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /campaigns", s.handleListCampaigns)
	mux.HandleFunc("POST /campaigns", s.requireAuth(s.rateLimited(s.handleCreateCampaign)))
	mux.HandleFunc("GET /campaigns/{id}", s.handleGetCampaign)
	mux.HandleFunc("POST /campaigns/{id}/escalate", s.requireAuth(s.rateLimited(s.handleEscalate)))
	mux.HandleFunc("POST /campaigns/{id}/cancel", s.requireAuth(s.handleCancelCampaign))
	mux.HandleFunc("GET /campaigns/{id}/events", s.handleCampaignEvents)

	mux.HandleFunc("POST /jobs/{job_id}/candidates/{candidate_id}/status", s.requireAuth(s.handleUpdateStatus))
	mux.HandleFunc("GET /jobs/{id}/followups", s.handleFollowUps)
	mux.HandleFunc("POST /candidates/{id}/demote", s.requireAuth(s.handleDemote))

	mux.HandleFunc("GET /analytics/distribution", s.handleAnalytics)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
	}
	return s
}

// Handler exposes the route table, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("operator API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, HTTPStatus(err), map[string]string{"error": err.Error()})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Message: fmt.Sprintf("invalid %s: %v", name, err)}
	}
	return id, nil
}
