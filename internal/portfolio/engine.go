// Package portfolio composes the scoring, anomaly, risk, playbook and KPI
// components over an account collection and exposes the derived views the
// dashboard consumes.
package portfolio

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/health-cli/internal/anomaly"
	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/playbook"
	"github.com/sells-group/health-cli/internal/scoring"
)

// Engine wires the pure engine components together. Per-account work is
// independent, so Process fans accounts out across a bounded worker group.
type Engine struct {
	calc        *scoring.Calculator
	detector    *anomaly.Detector
	recommender *playbook.Recommender
	workers     int
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecommender replaces the builtin rule table.
func WithRecommender(r *playbook.Recommender) Option {
	return func(e *Engine) { e.recommender = r }
}

// WithClock overrides the engine clock; tests use this to pin renewal and
// due-date math.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine from scoring and anomaly config.
func NewEngine(scoringCfg config.ScoringConfig, anomalyCfg config.AnomalyConfig, opts ...Option) (*Engine, error) {
	if err := scoring.ValidateConfig(scoringCfg); err != nil {
		return nil, err
	}

	workers := scoringCfg.Workers
	if workers <= 0 {
		workers = 1
	}

	e := &Engine{
		calc:        scoring.NewCalculator(scoringCfg),
		detector:    anomaly.NewDetector(anomalyCfg),
		recommender: playbook.NewRecommender(),
		workers:     workers,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Recommender returns the engine's playbook recommender.
func (e *Engine) Recommender() *playbook.Recommender {
	return e.recommender
}

// Annotate scores, classifies and anomaly-annotates a single account,
// returning a new record. The input is not modified.
func (e *Engine) Annotate(a model.Account, now time.Time) model.Account {
	out := a.Clone()
	out.HealthScore = e.calc.Score(a.NPS, a.UsagePercent, a.OpenTickets, a.BillingHealth)
	out.RiskTier = scoring.ClassifyAccount(out, now)
	out.UsageSeries = e.detector.Detect(a.UsageSeries)
	return out
}

// Breakdown returns the per-factor sub-scores for an account.
func (e *Engine) Breakdown(a model.Account) scoring.Breakdown {
	return e.calc.ScoreBreakdown(a.NPS, a.UsagePercent, a.OpenTickets, a.BillingHealth)
}

// Recommend returns the merged, ranked action list for an account as of
// the engine clock.
func (e *Engine) Recommend(a model.Account) []model.PlaybookItem {
	return e.recommender.Recommend(a, e.now())
}

// Process validates, scores, classifies and annotates every account
// concurrently and returns an immutable snapshot taken at the engine
// clock. The caller's records are never mutated; a refresh produces a new
// snapshot. Validation failures abort the whole batch so a snapshot is
// never partially applied.
func (e *Engine) Process(ctx context.Context, accounts []model.Account) (*Snapshot, error) {
	if err := model.ValidateAll(accounts); err != nil {
		return nil, err
	}

	now := e.now()
	annotated := make([]model.Account, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, a := range accounts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			annotated[i] = e.Annotate(a, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newSnapshot(annotated, now), nil
}
