package journeys

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/hirewire/loadgen/internal/httpx"
	"github.com/hirewire/loadgen/internal/refdata"
)

// runEmployerProfile is phase 1 of the registered employer journey: fetch
// the own profile, ensure at least one benefit is attached and ensure at
// least one location exists, returning its id (0 when none could be
// resolved).
func runEmployerProfile(ctx context.Context, u *User) int {
	_, _ = u.Session.Get(ctx, "/api/employers/profile/", "employers.profile.get", nil)
	ensureBenefit(ctx, u)
	return getOrCreateLocation(ctx, u)
}

func ensureBenefit(ctx context.Context, u *User) {
	res, err := u.Session.Get(ctx, "/api/employers/profile/benefits/", "employers.benefits.list", noPagination())
	if err != nil || res == nil {
		return
	}
	if optionalMissing(res.Status) {
		u.markTolerated("employers.benefits.list")
		return
	}
	if res.Status != http.StatusOK {
		return
	}
	if len(httpx.CoerceList(res.JSON())) > 0 {
		return
	}

	benefitID := refdata.PickID(u.Ref.Benefits(ctx))
	if benefitID == 0 {
		return
	}
	_, _ = u.Session.Post(ctx, "/api/employers/profile/benefits/", "employers.benefits.create", map[string]any{
		"benefit": benefitID,
	})
}

func getOrCreateLocation(ctx context.Context, u *User) int {
	res, err := u.Session.Get(ctx, "/api/employers/profile/locations/", "employers.locations.list", noPagination())
	if err != nil || res == nil {
		return 0
	}
	if optionalMissing(res.Status) {
		u.markTolerated("employers.locations.list")
		return 0
	}
	if res.Status != http.StatusOK {
		return 0
	}
	if id := httpx.FirstID(httpx.CoerceList(res.JSON())); id != 0 {
		return id
	}

	cityID := refdata.PickID(u.Ref.Cities(ctx))
	if cityID == 0 {
		return 0
	}
	created, err := u.Session.Post(ctx, "/api/employers/profile/locations/", "employers.locations.create", map[string]any{
		"city": cityID,
	})
	if err != nil || created == nil || (created.Status != http.StatusOK && created.Status != http.StatusCreated) {
		return 0
	}
	return httpx.FirstID([]map[string]any{created.JSONMap()})
}

func createOffer(ctx context.Context, u *User, locationID int) int {
	remoteness := refdata.RandomChoiceValue(u.Ref.RemotenessChoices(ctx), u.Fab)
	seniority := refdata.RandomChoiceValue(u.Ref.SeniorityChoices(ctx), u.Fab)
	contract := refdata.RandomChoiceValue(u.Ref.ContractTypeChoices(ctx), u.Fab)
	skillIDs := u.Fab.SampleInts(httpx.IDs(u.Ref.Skills(ctx)), 3)

	if remoteness == "" || seniority == "" || contract == "" || len(skillIDs) == 0 {
		log.WithField("persona", u.PersonaKey).Warnf(
			"skipping offer creation: missing reference data (remoteness=%q, seniority=%q, contract=%q, skills=%d)",
			remoteness, seniority, contract, len(skillIDs),
		)
		return 0
	}

	payload := map[string]any{
		"description": u.Fab.Paragraph(3),
		"location":    locationID,
		"remoteness":  remoteness,
		"contract":    contract,
		"seniority":   seniority,
		"position":    fmt.Sprintf("%s (%s)", u.Fab.JobPosition(), u.Fab.Word()),
		"wage":        u.Fab.IntBetween(4000, 25000),
		"currency":    "PLN",
		"skills":      skillIDs,
	}
	res, err := u.Session.Post(ctx, "/api/jobs/profile/", "jobs.profile.create", payload)
	if err != nil || res == nil || (res.Status != http.StatusOK && res.Status != http.StatusCreated) {
		return 0
	}
	return httpx.FirstID([]map[string]any{res.JSONMap()})
}

// runEmployerJobs is phase 2 of the employer journeys: list own offers,
// create the configured number of new ones when a location is available,
// and check applicants on a known offer.
func runEmployerJobs(ctx context.Context, u *User, locationID int) {
	existingOfferID := 0
	res, err := u.Session.Get(ctx, "/api/jobs/profile/", "jobs.profile.list", url.Values{"page": []string{"1"}})
	if err == nil && res != nil && res.Status == http.StatusOK {
		existingOfferID = httpx.FirstID(httpx.CoerceList(res.JSON()))
	}

	if locationID != 0 {
		for i := 0; i < u.OffersPerJourney; i++ {
			if createdID := createOffer(ctx, u, locationID); createdID != 0 {
				existingOfferID = createdID
			}
		}
	} else {
		log.WithField("persona", u.PersonaKey).Warn("skipping offer creation: no location available")
	}

	if existingOfferID != 0 {
		_, _ = u.Session.Get(ctx,
			fmt.Sprintf("/api/jobs/profile/%d/applicants/", existingOfferID),
			"jobs.profile.applicants",
			url.Values{"page": []string{"1"}},
		)
	}
}
