// Package refdata caches the read-mostly lookup collections (cities,
// countries, skills, industries, choice enumerations) one simulated user
// consults during its journeys.
package refdata

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/httpx"
)

const (
	KeyCities      = "cities"
	KeyCountries   = "countries"
	KeySkills      = "skills"
	KeyIndustries  = "industries"
	KeySeniority   = "seniority"
	KeyContracts   = "contract_types"
	KeyRemoteness  = "remoteness_levels"
	KeyBenefits    = "benefits"
	noPaginationQS = "?no_pagination=true"
)

var paths = map[string]string{
	KeyCities:     "/api/users/cities/" + noPaginationQS,
	KeyCountries:  "/api/users/countries/" + noPaginationQS,
	KeySkills:     "/api/jobs/skills/" + noPaginationQS,
	KeyIndustries: "/api/jobs/industries/" + noPaginationQS,
	KeySeniority:  "/api/jobs/seniority/" + noPaginationQS,
	KeyContracts:  "/api/jobs/contract-types/" + noPaginationQS,
	KeyRemoteness: "/api/jobs/remoteness-levels/" + noPaginationQS,
	KeyBenefits:   "/api/employers/benefits/" + noPaginationQS,
}

// Cache is owned by exactly one virtual user and is not safe for
// concurrent use. Each key is fetched lazily and cached at most once per
// user session; transient fetch failures are never cached, so the next
// access retries the network instead of staying stuck empty.
type Cache struct {
	exec              *httpx.Executor
	personaKey        string
	defaultCityID     int
	defaultIndustryID int
	data              map[string][]map[string]any
}

func NewCache(exec *httpx.Executor, personaKey string, defaultCityID, defaultIndustryID int) *Cache {
	return &Cache{
		exec:              exec,
		personaKey:        personaKey,
		defaultCityID:     defaultCityID,
		defaultIndustryID: defaultIndustryID,
		data:              make(map[string][]map[string]any),
	}
}

func (c *Cache) get(ctx context.Context, key, action string) []map[string]any {
	if cached, ok := c.data[key]; ok {
		return cached
	}

	res, err := c.exec.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		Path:   paths[key],
		Name:   httpx.FormatActionName(c.personaKey, action),
	})
	if err != nil || res == nil || res.Status != http.StatusOK {
		// Seeded defaults keep registration flows alive when the lookup
		// endpoints are briefly unavailable.
		if key == KeyCities && c.defaultCityID != 0 {
			c.data[key] = []map[string]any{{"id": float64(c.defaultCityID)}}
			return c.data[key]
		}
		if key == KeyIndustries && c.defaultIndustryID != 0 {
			c.data[key] = []map[string]any{{"id": float64(c.defaultIndustryID)}}
			return c.data[key]
		}
		return []map[string]any{}
	}

	items := httpx.CoerceList(res.JSON())
	c.data[key] = items
	return items
}

func (c *Cache) Cities(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyCities, "users.cities")
}

func (c *Cache) Countries(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyCountries, "users.countries")
}

func (c *Cache) Skills(ctx context.Context) []map[string]any {
	return c.get(ctx, KeySkills, "ref.skills")
}

func (c *Cache) Industries(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyIndustries, "jobs.industries")
}

func (c *Cache) SeniorityChoices(ctx context.Context) []map[string]any {
	return c.get(ctx, KeySeniority, "jobs.seniority")
}

func (c *Cache) ContractTypeChoices(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyContracts, "jobs.contract_types")
}

func (c *Cache) RemotenessChoices(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyRemoteness, "jobs.remoteness_levels")
}

func (c *Cache) Benefits(ctx context.Context) []map[string]any {
	return c.get(ctx, KeyBenefits, "employers.benefits.ref_list")
}

// PickChoiceValue returns the first non-empty "value" field from a list of
// choice records ({value, display}); malformed entries are skipped.
func PickChoiceValue(items []map[string]any) string {
	for _, item := range items {
		if v, ok := item["value"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// PickID returns the first integer "id" field, or 0.
func PickID(items []map[string]any) int {
	return httpx.FirstID(items)
}

// RandomChoiceValue picks a uniform choice value, logging a warning when
// the list has no usable entries so empty reference data stays diagnosable.
func RandomChoiceValue(items []map[string]any, src *fabricate.Source) string {
	values := make([]string, 0, len(items))
	for _, item := range items {
		if v, ok := item["value"].(string); ok && v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		log.Warn("no usable choice values in reference list")
		return ""
	}
	return values[src.IntBetween(0, len(values)-1)]
}

// RandomID picks a uniform integer id, logging a warning on empty input.
func RandomID(items []map[string]any, src *fabricate.Source) int {
	ids := httpx.IDs(items)
	if len(ids) == 0 {
		log.Warn("no usable ids in reference list")
		return 0
	}
	return ids[src.IntBetween(0, len(ids)-1)]
}
