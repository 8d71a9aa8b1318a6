// Package journeys holds the behavioral scripts simulated users execute:
// profile setup and job interactions for candidates and employers, in
// registered and seeded variants. The four personas are composed from the
// same profile/jobs building blocks so behavior differences come from the
// auth mode alone.
package journeys

import (
	"context"

	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/httpx"
	"github.com/hirewire/loadgen/internal/metrics"
	"github.com/hirewire/loadgen/internal/refdata"
	"github.com/hirewire/loadgen/internal/session"
)

// User bundles everything one virtual user's journey needs. Exec issues
// unauthenticated calls (public browsing); Session issues authenticated
// ones.
type User struct {
	PersonaKey string
	Session    *session.Session
	Exec       *httpx.Executor
	Ref        *refdata.Cache
	Fab        *fabricate.Source
	Stats      *metrics.Registry

	ApplyMin         int
	ApplyMax         int
	OffersPerJourney int
}

func (u *User) name(action string) string {
	return httpx.FormatActionName(u.PersonaKey, action)
}

func (u *User) markTolerated(action string) {
	if u.Stats != nil {
		u.Stats.MarkTolerated(u.name(action))
	}
}

// Statuses meaning "this optional endpoint does not exist here"; treated
// as tolerated outcomes, not failures.
func optionalMissing(status int) bool {
	return status == 404 || status == 405 || status == 501
}

// Run executes one iteration of the journey for the given persona.
// Phase failures inside a journey are isolated: a broken profile setup
// never prevents the jobs phase from running.
func Run(ctx context.Context, persona domain.Persona, u *User) {
	switch persona {
	case domain.CandidateRegistered:
		runCandidateProfile(ctx, u)
		runCandidateJobs(ctx, u)
	case domain.CandidateSeeded:
		// Seeded candidates only verify the profile exists before browsing.
		_, _ = u.Session.Get(ctx, "/api/candidates/profile/", "candidates.profile.get", nil)
		runCandidateJobs(ctx, u)
	case domain.EmployerRegistered:
		locationID := runEmployerProfile(ctx, u)
		runEmployerJobs(ctx, u, locationID)
	case domain.EmployerSeeded:
		locationID := readEmployerLocation(ctx, u)
		runEmployerJobs(ctx, u, locationID)
	}
}

// readEmployerLocation is the read-only phase 1 of the seeded employer:
// fetch profile and reuse an existing location, never create one.
func readEmployerLocation(ctx context.Context, u *User) int {
	_, _ = u.Session.Get(ctx, "/api/employers/profile/", "employers.profile.get", nil)

	res, err := u.Session.Get(ctx, "/api/employers/profile/locations/", "employers.locations.list", noPagination())
	if err != nil || res == nil || res.Status != 200 {
		return 0
	}
	return httpx.FirstID(httpx.CoerceList(res.JSON()))
}
