// Package application hosts the seeding service: the offline, idempotent
// batch job that provisions reference data, seeded account pools and
// baseline job offers before a load run.
package application

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/ports"
)

// OfferPositionPrefix marks seeded baseline offers so reruns can count
// what already exists instead of keeping separate bookkeeping.
const OfferPositionPrefix = "LT Seed Offer"

// SeedParams mirrors the seed command's flag surface. Overrides at zero
// mean "derive from total users and weights".
type SeedParams struct {
	Seed       int64
	TotalUsers int
	Weights    string
	PoolBuffer int

	C2Users    int
	E2Users    int
	C2PoolSize int
	E2PoolSize int

	DefaultPassword string

	Countries  int
	Cities     int
	Industries int
	Skills     int
	Benefits   int

	JobsTarget int

	OutputDir string
	Format    string
}

// SeedSummary is the non-secret result of one seeding pass.
type SeedSummary struct {
	OutputDir  string `json:"output_dir"`
	C2PoolSize int    `json:"c2_pool_size"`
	E2PoolSize int    `json:"e2_pool_size"`
	ExpectedC2 int    `json:"expected_c2_users"`
	ExpectedE2 int    `json:"expected_e2_users"`

	C2Created int `json:"c2_created"`
	C2Reused  int `json:"c2_reused"`
	E2Created int `json:"e2_created"`
	E2Reused  int `json:"e2_reused"`

	ReferenceCreated int `json:"reference_created"`
	ReferenceReused  int `json:"reference_reused"`

	OffersCreated  int `json:"offers_created"`
	OffersExisting int `json:"offers_existing"`
}

// Seeder provisions everything seeded personas need, additively: every
// write is get-or-create by natural key, so interrupted or repeated runs
// converge to the same end state.
type Seeder struct {
	store ports.SeedStore
	fab   *fabricate.Source
}

func NewSeeder(store ports.SeedStore, fab *fabricate.Source) *Seeder {
	return &Seeder{store: store, fab: fab}
}

// validate rejects bad parameters before any store write happens.
func validate(p SeedParams) (domain.PersonaWeights, error) {
	if p.PoolBuffer < 1 {
		return domain.PersonaWeights{}, fmt.Errorf("pool buffer must be >= 1, got %d", p.PoolBuffer)
	}
	if p.JobsTarget < 0 {
		return domain.PersonaWeights{}, fmt.Errorf("jobs target must be >= 0, got %d", p.JobsTarget)
	}
	switch p.Format {
	case "json", "csv", "both":
	default:
		return domain.PersonaWeights{}, fmt.Errorf("unsupported pool output format %q (want json, csv or both)", p.Format)
	}
	if p.DefaultPassword == "" {
		return domain.PersonaWeights{}, fmt.Errorf("default password must not be empty")
	}
	return domain.ParsePersonaWeights(p.Weights)
}

func expectedUsers(total, weight, weightSum int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) * float64(weight) / float64(weightSum)))
}

func poolSize(override, expected, buffer int) int {
	if override > 0 {
		return override
	}
	size := expected * buffer
	if size < 1 {
		size = 1
	}
	return size
}

func (s *Seeder) Seed(ctx context.Context, p SeedParams) (SeedSummary, error) {
	weights, err := validate(p)
	if err != nil {
		return SeedSummary{}, err
	}
	sum := weights.Sum()

	summary := SeedSummary{
		OutputDir:  p.OutputDir,
		ExpectedC2: p.C2Users,
		ExpectedE2: p.E2Users,
	}
	if summary.ExpectedC2 <= 0 {
		summary.ExpectedC2 = expectedUsers(p.TotalUsers, weights.C2, sum)
	}
	if summary.ExpectedE2 <= 0 {
		summary.ExpectedE2 = expectedUsers(p.TotalUsers, weights.E2, sum)
	}
	summary.C2PoolSize = poolSize(p.C2PoolSize, summary.ExpectedC2, p.PoolBuffer)
	summary.E2PoolSize = poolSize(p.E2PoolSize, summary.ExpectedE2, p.PoolBuffer)

	log.Info("seeding reference data (additive)")
	ref, err := s.seedReference(ctx, p)
	if err != nil {
		return SeedSummary{}, err
	}
	summary.ReferenceCreated = ref.counts.Created
	summary.ReferenceReused = ref.counts.Reused

	log.Info("seeding account pools (c2/e2)")
	c2Accounts, c2Counts, err := s.seedCandidatePool(ctx, ref, summary.C2PoolSize, p.DefaultPassword)
	if err != nil {
		return SeedSummary{}, err
	}
	summary.C2Created, summary.C2Reused = c2Counts.Created, c2Counts.Reused

	e2Accounts, employerIDs, e2Counts, err := s.seedEmployerPool(ctx, ref, summary.E2PoolSize, p.DefaultPassword)
	if err != nil {
		return SeedSummary{}, err
	}
	summary.E2Created, summary.E2Reused = e2Counts.Created, e2Counts.Reused

	log.Info("seeding baseline job offers")
	offerCounts, err := s.seedOffers(ctx, ref, employerIDs, p.JobsTarget)
	if err != nil {
		return SeedSummary{}, err
	}
	summary.OffersCreated, summary.OffersExisting = offerCounts.Created, offerCounts.Reused

	if err := writePools(p.OutputDir, p.Format, c2Accounts, e2Accounts); err != nil {
		return SeedSummary{}, err
	}
	return summary, nil
}

// referenceSet holds the ids of the namespaced reference rows this pass
// guaranteed to exist, in deterministic (name) order.
type referenceSet struct {
	countryIDs  []int64
	cityIDs     []int64
	industryIDs []int64
	skillIDs    []int64
	benefitIDs  []int64
	counts      domain.SeedCounts
}

func (s *Seeder) seedReference(ctx context.Context, p SeedParams) (*referenceSet, error) {
	ref := &referenceSet{}

	for i := 1; i <= p.Countries; i++ {
		id, created, err := s.store.GetOrCreateCountry(ctx, fmt.Sprintf("LoadTest Country %02d", i))
		if err != nil {
			return nil, fmt.Errorf("seed country %d: %w", i, err)
		}
		ref.countryIDs = append(ref.countryIDs, id)
		ref.counts = tally(ref.counts, created)
	}
	if len(ref.countryIDs) == 0 {
		return nil, fmt.Errorf("at least one country is required, got --countries %d", p.Countries)
	}

	for i := 1; i <= p.Cities; i++ {
		city := domain.SeedCity{
			Name:      fmt.Sprintf("LoadTest City %04d", i),
			Province:  fmt.Sprintf("LoadTest Province %02d", (i-1)%10),
			ZipCode:   fmt.Sprintf("%02d-%03d", (i-1)%100, (i*37)%1000),
			CountryID: ref.countryIDs[(i-1)%len(ref.countryIDs)],
		}
		id, created, err := s.store.GetOrCreateCity(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("seed city %d: %w", i, err)
		}
		ref.cityIDs = append(ref.cityIDs, id)
		ref.counts = tally(ref.counts, created)
	}
	if len(ref.cityIDs) == 0 {
		return nil, fmt.Errorf("at least one city is required, got --cities %d", p.Cities)
	}

	named := []struct {
		kind   ports.NamedKind
		format string
		count  int
		dest   *[]int64
	}{
		{ports.KindIndustry, "LoadTest Industry %03d", p.Industries, &ref.industryIDs},
		{ports.KindSkill, "LoadTest Skill %03d", p.Skills, &ref.skillIDs},
		{ports.KindBenefit, "LoadTest Benefit %03d", p.Benefits, &ref.benefitIDs},
	}
	for _, n := range named {
		for i := 1; i <= n.count; i++ {
			id, created, err := s.store.GetOrCreateNamed(ctx, n.kind, fmt.Sprintf(n.format, i))
			if err != nil {
				return nil, fmt.Errorf("seed %s %d: %w", n.kind, i, err)
			}
			*n.dest = append(*n.dest, id)
			ref.counts = tally(ref.counts, created)
		}
	}
	if len(ref.industryIDs) == 0 {
		return nil, fmt.Errorf("at least one industry is required, got --industries %d", p.Industries)
	}
	return ref, nil
}

func tally(c domain.SeedCounts, created bool) domain.SeedCounts {
	if created {
		return c.AddCreated(1)
	}
	return c.AddReused(1)
}

func (s *Seeder) seedCandidatePool(ctx context.Context, ref *referenceSet, size int, password string) ([]domain.Account, domain.SeedCounts, error) {
	var counts domain.SeedCounts
	accounts := make([]domain.Account, 0, size)

	for i := 0; i < size; i++ {
		email := fmt.Sprintf("loadtest+c2-%05d@example.com", i)
		userID, created, err := s.store.GetOrCreateUser(ctx, domain.SeedUser{
			Email:     email,
			Password:  password,
			FirstName: s.fab.FirstName(),
			LastName:  s.fab.LastName(),
			Phone:     fmt.Sprintf("+1001%08d", i),
			CityID:    ref.cityIDs[i%len(ref.cityIDs)],
		})
		if err != nil {
			return nil, counts, fmt.Errorf("seed candidate user %s: %w", email, err)
		}
		counts = tally(counts, created)

		if err := s.store.EnsureCandidate(ctx, userID, "Seeded load test candidate account."); err != nil {
			return nil, counts, fmt.Errorf("seed candidate profile %s: %w", email, err)
		}
		accounts = append(accounts, domain.Account{Email: email, Password: password})
	}
	return accounts, counts, nil
}

func (s *Seeder) seedEmployerPool(ctx context.Context, ref *referenceSet, size int, password string) ([]domain.Account, []int64, domain.SeedCounts, error) {
	var counts domain.SeedCounts
	accounts := make([]domain.Account, 0, size)
	employerIDs := make([]int64, 0, size)

	for i := 0; i < size; i++ {
		email := fmt.Sprintf("loadtest+e2-%05d@example.com", i)
		userID, created, err := s.store.GetOrCreateUser(ctx, domain.SeedUser{
			Email:     email,
			Password:  password,
			FirstName: s.fab.FirstName(),
			LastName:  s.fab.LastName(),
			Phone:     fmt.Sprintf("+2001%08d", i),
			CityID:    ref.cityIDs[i%len(ref.cityIDs)],
		})
		if err != nil {
			return nil, nil, counts, fmt.Errorf("seed employer user %s: %w", email, err)
		}
		counts = tally(counts, created)

		employerID, err := s.store.EnsureEmployer(ctx, domain.SeedEmployer{
			UserID:      userID,
			CompanyName: fmt.Sprintf("LoadTest Employer %05d", i),
			WebsiteURL:  fmt.Sprintf("https://loadtest-e2-%05d.example.com", i),
			Description: "Seeded load test employer account.",
			IndustryID:  ref.industryIDs[i%len(ref.industryIDs)],
		})
		if err != nil {
			return nil, nil, counts, fmt.Errorf("seed employer profile %s: %w", email, err)
		}
		employerIDs = append(employerIDs, employerID)

		// One location and (when any exist) one benefit up front, so the
		// employer journeys can create offers without extra setup calls.
		if _, err := s.store.EnsureEmployerLocation(ctx, employerID, ref.cityIDs[(i*7)%len(ref.cityIDs)]); err != nil {
			return nil, nil, counts, fmt.Errorf("seed employer location %s: %w", email, err)
		}
		if len(ref.benefitIDs) > 0 {
			if err := s.store.EnsureEmployerBenefit(ctx, employerID, ref.benefitIDs[i%len(ref.benefitIDs)]); err != nil {
				return nil, nil, counts, fmt.Errorf("seed employer benefit %s: %w", email, err)
			}
		}
		accounts = append(accounts, domain.Account{Email: email, Password: password})
	}
	return accounts, employerIDs, counts, nil
}

// seedOffers tops the baseline offer count up to target. The existing
// count of marker-prefixed offers is the idempotence check: at or above
// target, nothing is written.
func (s *Seeder) seedOffers(ctx context.Context, ref *referenceSet, employerIDs []int64, target int) (domain.SeedCounts, error) {
	existing, err := s.store.CountOffersByPositionPrefix(ctx, OfferPositionPrefix)
	if err != nil {
		return domain.SeedCounts{}, fmt.Errorf("count seeded offers: %w", err)
	}
	counts := domain.SeedCounts{Reused: existing}
	if existing >= target || len(employerIDs) == 0 {
		return counts, nil
	}

	for i := existing; i < target; i++ {
		employerID := employerIDs[i%len(employerIDs)]
		locationID, err := s.store.FirstEmployerLocation(ctx, employerID)
		if err != nil {
			return counts, fmt.Errorf("resolve location for employer %d: %w", employerID, err)
		}
		if locationID == 0 {
			// Pools created by this command always have one; stay
			// additive-safe if the data predates it.
			continue
		}

		if _, err := s.store.CreateOffer(ctx, domain.SeedOffer{
			EmployerID:  employerID,
			LocationID:  locationID,
			Position:    fmt.Sprintf("%s %05d", OfferPositionPrefix, i),
			Description: s.fab.Paragraph(3),
			Remoteness:  pickString(s.fab, domain.RemotenessLevels),
			Contract:    pickString(s.fab, domain.ContractTypes),
			Seniority:   pickString(s.fab, domain.SeniorityLevels),
			Wage:        s.fab.IntBetween(4000, 25000),
			Currency:    "PLN",
			SkillIDs:    sampleIDs(s.fab, ref.skillIDs, 3),
		}); err != nil {
			return counts, fmt.Errorf("create seeded offer %d: %w", i, err)
		}
		counts = counts.AddCreated(1)
	}
	return counts, nil
}

func pickString(fab *fabricate.Source, values []string) string {
	return values[fab.IntBetween(0, len(values)-1)]
}

func sampleIDs(fab *fabricate.Source, ids []int64, k int) []int64 {
	if len(ids) == 0 {
		return nil
	}
	indices := make([]int, len(ids))
	for i := range indices {
		indices[i] = i
	}
	picked := fab.SampleInts(indices, k)
	out := make([]int64, 0, len(picked))
	for _, idx := range picked {
		out = append(out, ids[idx])
	}
	return out
}
