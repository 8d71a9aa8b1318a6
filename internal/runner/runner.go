// Package runner turns a validated configuration into a population of
// virtual users and drives their journey loops until the run is stopped.
package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hirewire/loadgen/internal/accounts"
	"github.com/hirewire/loadgen/internal/config"
	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/httpx"
	"github.com/hirewire/loadgen/internal/journeys"
	"github.com/hirewire/loadgen/internal/metrics"
	"github.com/hirewire/loadgen/internal/refdata"
	"github.com/hirewire/loadgen/internal/session"
)

// Runner owns the shared state of one load run: the account pools, the
// per-process allocator and the stats registry. Everything else is
// per-user.
type Runner struct {
	cfg    config.Config
	stats  *metrics.Registry
	pools  *accounts.Cache
	alloc  *accounts.Allocator
	client *http.Client
}

func New(cfg config.Config, stats *metrics.Registry) *Runner {
	return &Runner{
		cfg:    cfg,
		stats:  stats,
		pools:  accounts.NewCache(),
		alloc:  accounts.NewAllocator(),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) weights() domain.PersonaWeights {
	return domain.PersonaWeights{
		C1: r.cfg.C1Weight,
		C2: r.cfg.C2Weight,
		E1: r.cfg.E1Weight,
		E2: r.cfg.E2Weight,
	}
}

// Run spawns totalUsers virtual users apportioned by the persona weights
// and blocks until ctx is cancelled. A user that cannot authenticate is
// logged and retired; an exhausted account pool aborts the whole run
// because it means the worker was pointed at too small a seed set.
func (r *Runner) Run(ctx context.Context, totalUsers int) error {
	if totalUsers <= 0 {
		return fmt.Errorf("total users must be positive, got %d", totalUsers)
	}

	mix := r.weights().Mix(totalUsers)
	for persona, count := range mix {
		log.WithFields(log.Fields{"persona": persona.Key(), "users": count}).Info("spawning users")
	}

	g, ctx := errgroup.WithContext(ctx)
	userIndex := 0
	for _, persona := range []domain.Persona{
		domain.CandidateSeeded,
		domain.CandidateRegistered,
		domain.EmployerSeeded,
		domain.EmployerRegistered,
	} {
		for i := 0; i < mix[persona]; i++ {
			p, idx := persona, userIndex
			userIndex++
			g.Go(func() error {
				return r.runUser(ctx, p, idx)
			})
		}
	}
	return g.Wait()
}

// userSeed derives a distinct deterministic seed per user when the run is
// seeded, and 0 (time-seeded) otherwise.
func (r *Runner) userSeed(index int) int64 {
	if r.cfg.Seed == 0 {
		return 0
	}
	return r.cfg.Seed + int64(index)
}

func (r *Runner) runUser(ctx context.Context, persona domain.Persona, index int) error {
	fab := fabricate.New(r.userSeed(index))
	exec := &httpx.Executor{
		BaseURL:       r.cfg.Host,
		Client:        r.client,
		RetryMax:      r.cfg.RetryMax,
		RetryBackoff:  r.cfg.RetryBackoff,
		RetryStatuses: r.cfg.RetryStatuses,
		Observer:      r.stats,
	}
	ref := refdata.NewCache(exec, persona.Key(), r.cfg.DefaultCityID, r.cfg.DefaultIndustryID)
	sess := session.New(exec, ref, fab, persona.Key(), session.Options{
		DefaultCityID:       r.cfg.DefaultCityID,
		DefaultIndustryID:   r.cfg.DefaultIndustryID,
		ResumeUploadEnabled: r.cfg.ResumeUploadEnabled,
	})

	if err := r.authenticate(ctx, persona, sess); err != nil {
		if errors.Is(err, domain.ErrPoolExhausted) || errors.Is(err, domain.ErrPoolEmpty) {
			return fmt.Errorf("persona %s: %w", persona.Key(), err)
		}
		log.WithFields(log.Fields{"persona": persona.Key(), "user": index}).
			Errorf("authentication failed, retiring user: %v", err)
		return nil
	}

	u := &journeys.User{
		PersonaKey:       persona.Key(),
		Session:          sess,
		Exec:             exec,
		Ref:              ref,
		Fab:              fab,
		Stats:            r.stats,
		ApplyMin:         r.cfg.ApplyMin,
		ApplyMax:         r.cfg.ApplyMax,
		OffersPerJourney: r.cfg.OffersPerJourney,
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		journeys.Run(ctx, persona, u)
		if !sleepCtx(ctx, fab.DurationBetween(r.cfg.WaitMin, r.cfg.WaitMax)) {
			return nil
		}
	}
}

// authenticate performs the persona's start-of-life auth: seeded personas
// draw a pre-provisioned account from their pool and log in, registered
// personas create a brand new account.
func (r *Runner) authenticate(ctx context.Context, persona domain.Persona, sess *session.Session) error {
	if persona.AuthMode() == domain.AuthModeRegister {
		if persona.Role() == domain.RoleCandidate {
			return sess.RegisterCandidate(ctx)
		}
		return sess.RegisterEmployer(ctx)
	}

	path := r.cfg.C2AccountsPath
	if persona.Role() == domain.RoleEmployer {
		path = r.cfg.E2AccountsPath
	}
	pool, err := r.pools.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s account pool: %w", persona.Key(), err)
	}
	if len(pool) == 0 {
		return fmt.Errorf("persona %s: %w", persona.Key(), domain.ErrPoolEmpty)
	}
	account, err := r.alloc.Allocate(persona.Key(), pool, r.cfg.WorkerIndex, r.cfg.WorkerCount)
	if err != nil {
		return err
	}
	return sess.Login(ctx, account.Email, account.Password)
}

// sleepCtx waits for d or until ctx is cancelled; it reports whether the
// full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
