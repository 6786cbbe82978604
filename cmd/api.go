package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/portfolio"
	"github.com/sells-group/health-cli/internal/source"
)

// apiServer serves read-only dashboard endpoints from an immutable
// portfolio snapshot. Refresh swaps in a newly computed snapshot
// atomically; in-flight requests keep reading the one they started with.
type apiServer struct {
	engine *portfolio.Engine
	src    source.Source
	snap   atomic.Pointer[portfolio.Snapshot]
}

func newAPIServer(engine *portfolio.Engine, src source.Source) *apiServer {
	return &apiServer{engine: engine, src: src}
}

// refresh reloads accounts from the source and recomputes the snapshot.
func (s *apiServer) refresh(ctx context.Context) error {
	accounts, err := s.src.Accounts(ctx)
	if err != nil {
		return err
	}
	snap, err := s.engine.Process(ctx, accounts)
	if err != nil {
		return err
	}
	s.snap.Store(snap)
	return nil
}

func (s *apiServer) router(srvCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: srvCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(rateLimit(rate.Limit(srvCfg.RateLimitRPS), srvCfg.RateLimitBurst))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", s.handleAccounts)
		r.Get("/accounts/{id}", s.handleAccount)
		r.Get("/accounts/{id}/playbooks", s.handlePlaybooks)
		r.Get("/at-risk", s.handleAtRisk)
		r.Get("/kpis", s.handleKPIs)
		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// rateLimit applies a single shared token bucket across all clients.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *apiServer) snapshot(w http.ResponseWriter) *portfolio.Snapshot {
	snap := s.snap.Load()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return nil
	}
	return snap
}

func (s *apiServer) handleAccounts(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	accounts := snap.Accounts()
	if segment := r.URL.Query().Get("segment"); segment != "" {
		accounts = snap.BySegment(segment)
	}
	if tier := r.URL.Query().Get("tier"); tier != "" {
		filtered := accounts[:0]
		for _, a := range accounts {
			if a.RiskTier == model.RiskTier(tier) {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(accounts) {
			accounts = accounts[:limit]
		}
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (s *apiServer) handleAccount(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	a, ok := snap.Account(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *apiServer) handlePlaybooks(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	a, ok := snap.Account(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Recommend(a))
}

func (s *apiServer) handleAtRisk(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.TopAtRisk())
}

func (s *apiServer) handleKPIs(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.KPIs())
}

func (s *apiServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.refresh(r.Context()); err != nil {
		zap.L().Error("snapshot refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	snap := s.snap.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": snap.Len(),
		"taken_at": snap.TakenAt(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
