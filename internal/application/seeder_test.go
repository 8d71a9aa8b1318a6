package application

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/ports"
)

// memSeedStore is an in-memory SeedStore with the same natural-key
// semantics as the real database: lookups by name/email/tuple, inserts
// assigning sequential ids.
type memSeedStore struct {
	nextID int64
	writes int

	countries map[string]int64
	cities    map[string]int64
	named     map[string]int64
	users     map[string]int64

	candidates map[int64]bool
	employers  map[int64]int64 // userID -> employerID
	locations  map[int64][]int64
	benefits   map[string]bool
	offers     []domain.SeedOffer
}

func newMemSeedStore() *memSeedStore {
	return &memSeedStore{
		countries:  make(map[string]int64),
		cities:     make(map[string]int64),
		named:      make(map[string]int64),
		users:      make(map[string]int64),
		candidates: make(map[int64]bool),
		employers:  make(map[int64]int64),
		locations:  make(map[int64][]int64),
		benefits:   make(map[string]bool),
	}
}

func (m *memSeedStore) id() int64 {
	m.nextID++
	m.writes++
	return m.nextID
}

func (m *memSeedStore) GetOrCreateCountry(_ context.Context, name string) (int64, bool, error) {
	if id, ok := m.countries[name]; ok {
		return id, false, nil
	}
	id := m.id()
	m.countries[name] = id
	return id, true, nil
}

func (m *memSeedStore) GetOrCreateCity(_ context.Context, city domain.SeedCity) (int64, bool, error) {
	key := fmt.Sprintf("%s|%s|%s|%d", city.Name, city.Province, city.ZipCode, city.CountryID)
	if id, ok := m.cities[key]; ok {
		return id, false, nil
	}
	id := m.id()
	m.cities[key] = id
	return id, true, nil
}

func (m *memSeedStore) GetOrCreateNamed(_ context.Context, kind ports.NamedKind, name string) (int64, bool, error) {
	key := string(kind) + "|" + name
	if id, ok := m.named[key]; ok {
		return id, false, nil
	}
	id := m.id()
	m.named[key] = id
	return id, true, nil
}

func (m *memSeedStore) GetOrCreateUser(_ context.Context, user domain.SeedUser) (int64, bool, error) {
	if id, ok := m.users[user.Email]; ok {
		return id, false, nil
	}
	id := m.id()
	m.users[user.Email] = id
	return id, true, nil
}

func (m *memSeedStore) EnsureCandidate(_ context.Context, userID int64, _ string) error {
	if !m.candidates[userID] {
		m.candidates[userID] = true
		m.writes++
	}
	return nil
}

func (m *memSeedStore) EnsureEmployer(_ context.Context, employer domain.SeedEmployer) (int64, error) {
	if id, ok := m.employers[employer.UserID]; ok {
		return id, nil
	}
	id := m.id()
	m.employers[employer.UserID] = id
	return id, nil
}

func (m *memSeedStore) EnsureEmployerLocation(_ context.Context, employerID, _ int64) (int64, error) {
	if locs := m.locations[employerID]; len(locs) > 0 {
		return locs[0], nil
	}
	id := m.id()
	m.locations[employerID] = append(m.locations[employerID], id)
	return id, nil
}

func (m *memSeedStore) EnsureEmployerBenefit(_ context.Context, employerID, benefitID int64) error {
	key := fmt.Sprintf("%d|%d", employerID, benefitID)
	if !m.benefits[key] {
		m.benefits[key] = true
		m.writes++
	}
	return nil
}

func (m *memSeedStore) FirstEmployerLocation(_ context.Context, employerID int64) (int64, error) {
	if locs := m.locations[employerID]; len(locs) > 0 {
		return locs[0], nil
	}
	return 0, nil
}

func (m *memSeedStore) CountOffersByPositionPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, o := range m.offers {
		if strings.HasPrefix(o.Position, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *memSeedStore) CreateOffer(_ context.Context, offer domain.SeedOffer) (int64, error) {
	m.offers = append(m.offers, offer)
	return m.id(), nil
}

func testParams(t *testing.T) SeedParams {
	t.Helper()
	return SeedParams{
		Seed:            12345,
		TotalUsers:      10,
		Weights:         "80/10/8/2",
		PoolBuffer:      2,
		DefaultPassword: "LoadTestPassword123!",
		Countries:       2,
		Cities:          3,
		Industries:      2,
		Skills:          4,
		Benefits:        2,
		JobsTarget:      5,
		OutputDir:       t.TempDir(),
		Format:          "json",
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemSeedStore()
	params := testParams(t)
	ctx := context.Background()

	first, err := NewSeeder(store, fabricate.New(params.Seed)).Seed(ctx, params)
	require.NoError(t, err)
	assert.Zero(t, first.C2Reused)
	assert.Zero(t, first.E2Reused)
	assert.Equal(t, params.JobsTarget, first.OffersCreated)

	usersAfterFirst := len(store.users)
	offersAfterFirst := len(store.offers)

	second, err := NewSeeder(store, fabricate.New(params.Seed)).Seed(ctx, params)
	require.NoError(t, err)

	assert.Zero(t, second.C2Created, "rerun reuses candidate accounts")
	assert.Zero(t, second.E2Created, "rerun reuses employer accounts")
	assert.Zero(t, second.ReferenceCreated, "rerun reuses reference rows")
	assert.Zero(t, second.OffersCreated, "offer count already meets the target")
	assert.Equal(t, params.JobsTarget, second.OffersExisting)

	assert.Equal(t, usersAfterFirst, len(store.users))
	assert.Equal(t, offersAfterFirst, len(store.offers))
	assert.Equal(t, first.C2Created, second.C2Reused)
	assert.Equal(t, first.E2Created, second.E2Reused)
}

func TestSeedValidationAbortsBeforeWrites(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*SeedParams)
	}{
		{"three weights", func(p *SeedParams) { p.Weights = "80/10/8" }},
		{"zero weight", func(p *SeedParams) { p.Weights = "80/0/8/2" }},
		{"negative weight", func(p *SeedParams) { p.Weights = "80/-1/8/2" }},
		{"zero buffer", func(p *SeedParams) { p.PoolBuffer = 0 }},
		{"bad format", func(p *SeedParams) { p.Format = "yaml" }},
		{"empty password", func(p *SeedParams) { p.DefaultPassword = "" }},
		{"negative jobs target", func(p *SeedParams) { p.JobsTarget = -1 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemSeedStore()
			params := testParams(t)
			tc.mutate(&params)

			_, err := NewSeeder(store, fabricate.New(1)).Seed(context.Background(), params)
			require.Error(t, err)
			assert.Zero(t, store.writes, "validation failures must precede any store write")
		})
	}
}

func TestSeedPoolSizing(t *testing.T) {
	t.Parallel()

	store := newMemSeedStore()
	params := testParams(t)
	params.TotalUsers = 50

	summary, err := NewSeeder(store, fabricate.New(1)).Seed(context.Background(), params)
	require.NoError(t, err)

	// 80/10/8/2: c2 share 0.8 of 50 = 40, e2 share 0.08 of 50 = 4.
	assert.Equal(t, 40, summary.ExpectedC2)
	assert.Equal(t, 4, summary.ExpectedE2)
	assert.Equal(t, 80, summary.C2PoolSize)
	assert.Equal(t, 8, summary.E2PoolSize)
}

func TestSeedPoolSizeOverridesWin(t *testing.T) {
	t.Parallel()

	store := newMemSeedStore()
	params := testParams(t)
	params.C2PoolSize = 3
	params.E2PoolSize = 2

	summary, err := NewSeeder(store, fabricate.New(1)).Seed(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.C2PoolSize)
	assert.Equal(t, 2, summary.E2PoolSize)
	assert.Equal(t, 3, summary.C2Created)
	assert.Equal(t, 2, summary.E2Created)
}

func TestSeedWritesPoolFiles(t *testing.T) {
	t.Parallel()

	store := newMemSeedStore()
	params := testParams(t)
	params.C2PoolSize = 3
	params.E2PoolSize = 2
	params.Format = "both"

	_, err := NewSeeder(store, fabricate.New(1)).Seed(context.Background(), params)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(params.OutputDir, "c2_accounts.json"))
	require.NoError(t, err)
	var entries []map[string]string
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("loadtest+c2-%05d@example.com", i), entry["email"])
		assert.Equal(t, params.DefaultPassword, entry["password"])
		assert.Len(t, entry, 2, "pool entries carry exactly email and password")
	}

	f, err := os.Open(filepath.Join(params.OutputDir, "e2_accounts.csv"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two accounts")
	assert.Equal(t, []string{"email", "password"}, rows[0])
	assert.Equal(t, "loadtest+e2-00000@example.com", rows[1][0])
}

func TestSeedOffersSpreadAcrossEmployers(t *testing.T) {
	t.Parallel()

	store := newMemSeedStore()
	params := testParams(t)
	params.E2PoolSize = 2
	params.JobsTarget = 4

	_, err := NewSeeder(store, fabricate.New(1)).Seed(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, store.offers, 4)
	employers := make(map[int64]int)
	for i, offer := range store.offers {
		employers[offer.EmployerID]++
		assert.Equal(t, fmt.Sprintf("%s %05d", OfferPositionPrefix, i), offer.Position)
		assert.NotZero(t, offer.LocationID)
		assert.NotEmpty(t, offer.SkillIDs)
		assert.Contains(t, domain.RemotenessLevels, offer.Remoteness)
	}
	assert.Len(t, employers, 2, "offers alternate between the seeded employers")
}
