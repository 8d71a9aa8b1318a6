package journeys

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hirewire/loadgen/internal/httpx"
	"github.com/hirewire/loadgen/internal/refdata"
)

const day = 24 * time.Hour

func noPagination() url.Values {
	return url.Values{"no_pagination": []string{"true"}}
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// runCandidateProfile is phase 1 of the candidate journeys: fetch the own
// profile and ensure at least one experience, education and skill record
// exists. Each "ensure" is read-then-conditionally-write, so reruns never
// duplicate data.
func runCandidateProfile(ctx context.Context, u *User) {
	_, _ = u.Session.Get(ctx, "/api/candidates/profile/", "candidates.profile.get", nil)

	ensureExperience(ctx, u)
	ensureEducation(ctx, u)
	ensureSkill(ctx, u)

	if _, err := u.Session.MaybeUploadResume(ctx); err != nil {
		log.WithField("persona", u.PersonaKey).Warnf("resume upload failed: %v", err)
	}
}

func ensureExperience(ctx context.Context, u *User) {
	res, err := u.Session.Get(ctx, "/api/candidates/profile/experience/", "candidates.experience.list", noPagination())
	if err != nil || res == nil || res.Status != http.StatusOK {
		return
	}
	if len(httpx.CoerceList(res.JSON())) >= 1 {
		return
	}

	now := time.Now()
	started := u.Fab.DateBetween(now.Add(-6*365*day), now.Add(-2*365*day))
	ended := u.Fab.DateBetween(now.Add(-2*365*day), now.Add(-30*day))
	_, _ = u.Session.Post(ctx, "/api/candidates/profile/experience/", "candidates.experience.create", map[string]any{
		"company_name": u.Fab.Company(),
		"date_from":    isoDate(started),
		"date_to":      isoDate(ended),
		"is_current":   false,
		"job_position": u.Fab.JobPosition(),
		"description":  u.Fab.Sentence(16),
	})
}

func ensureEducation(ctx context.Context, u *User) {
	res, err := u.Session.Get(ctx, "/api/candidates/profile/education/", "candidates.education.list", noPagination())
	if err != nil || res == nil || res.Status != http.StatusOK {
		return
	}
	if len(httpx.CoerceList(res.JSON())) >= 1 {
		return
	}

	now := time.Now()
	started := u.Fab.DateBetween(now.Add(-10*365*day), now.Add(-6*365*day))
	ended := u.Fab.DateBetween(now.Add(-6*365*day), now.Add(-3*365*day))
	_, _ = u.Session.Post(ctx, "/api/candidates/profile/education/", "candidates.education.create", map[string]any{
		"school_name":    fmt.Sprintf("%s University", u.Fab.Company()),
		"field_of_study": u.Fab.JobPosition(),
		"degree":         u.Fab.Degree(),
		"date_from":      isoDate(started),
		"date_to":        isoDate(ended),
		"is_current":     false,
	})
}

func ensureSkill(ctx context.Context, u *User) {
	res, err := u.Session.Get(ctx, "/api/candidates/profile/skills/", "candidates.skills.list", noPagination())
	if err != nil || res == nil || res.Status != http.StatusOK {
		return
	}
	if len(httpx.CoerceList(res.JSON())) >= 1 {
		return
	}

	skillID := refdata.RandomID(u.Ref.Skills(ctx), u.Fab)
	if skillID == 0 {
		return
	}
	_, _ = u.Session.Post(ctx, "/api/candidates/profile/skills/", "candidates.skills.create", map[string]any{
		"skill": skillID,
	})
}

// collectJobIDs walks the paginated job listing until it has gathered
// limit candidate ids, preferring paginated pages over heavy
// no-pagination responses.
func collectJobIDs(ctx context.Context, u *User, limit int) []int {
	var ids []int
	for page := 1; page <= 3; page++ {
		res, err := u.Exec.Do(ctx, httpx.Request{
			Method: http.MethodGet,
			Path:   "/api/jobs/",
			Name:   u.name("jobs.list"),
			Query:  url.Values{"page": []string{strconv.Itoa(page)}},
		})
		if err != nil || res == nil || res.Status != http.StatusOK {
			break
		}
		listing := httpx.Normalize(res.JSON())
		ids = append(ids, httpx.IDs(listing.Items)...)
		if len(ids) >= limit {
			break
		}
		if !listing.Paginated || listing.Next == "" {
			break
		}
	}
	if len(ids) > limit {
		return u.Fab.SampleInts(ids, limit)
	}
	return ids
}

// runCandidateJobs is phase 2 of the candidate journeys: warm the
// filter-UI reference lists, then apply to a target number of offers.
// Duplicate applications (400) are expected outcomes; the loop just moves
// on to the next candidate id.
func runCandidateJobs(ctx context.Context, u *User) {
	u.Ref.ContractTypeChoices(ctx)
	u.Ref.Industries(ctx)
	u.Ref.RemotenessChoices(ctx)
	u.Ref.SeniorityChoices(ctx)

	target := u.Fab.IntBetween(u.ApplyMin, u.ApplyMax)
	if target <= 0 {
		return
	}

	// Over-fetch so duplicate-apply rejections don't starve the target.
	candidateIDs := collectJobIDs(ctx, u, target*3)
	if len(candidateIDs) == 0 {
		return
	}

	applied := 0
	for _, jobID := range candidateIDs {
		if applied >= target {
			break
		}
		detail, err := u.Exec.Do(ctx, httpx.Request{
			Method: http.MethodGet,
			Path:   fmt.Sprintf("/api/jobs/%d/", jobID),
			Name:   u.name("jobs.detail"),
		})
		if err != nil || detail == nil || detail.Status != http.StatusOK {
			continue
		}

		applyRes, err := u.Session.Post(ctx, fmt.Sprintf("/api/jobs/%d/apply/", jobID), "jobs.apply", nil)
		if err != nil || applyRes == nil {
			continue
		}
		switch applyRes.Status {
		case http.StatusCreated:
			applied++
		case http.StatusBadRequest:
			// Already applied; tolerated, try the next offer.
			u.markTolerated("jobs.apply")
		}
	}
}
