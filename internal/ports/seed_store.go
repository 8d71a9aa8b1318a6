package ports

import (
	"context"

	"github.com/hirewire/loadgen/internal/domain"
)

// NamedKind selects one of the flat name-keyed reference tables.
type NamedKind string

const (
	KindIndustry NamedKind = "industry"
	KindSkill    NamedKind = "skill"
	KindBenefit  NamedKind = "benefit"
)

// SeedStore is the persistence boundary of the seeding command. Every
// write is get-or-create by natural key (name, email, or the full city
// tuple) so reruns converge instead of erroring on uniqueness conflicts.
type SeedStore interface {
	GetOrCreateCountry(ctx context.Context, name string) (id int64, created bool, err error)
	GetOrCreateCity(ctx context.Context, city domain.SeedCity) (id int64, created bool, err error)
	GetOrCreateNamed(ctx context.Context, kind NamedKind, name string) (id int64, created bool, err error)

	GetOrCreateUser(ctx context.Context, user domain.SeedUser) (id int64, created bool, err error)
	EnsureCandidate(ctx context.Context, userID int64, about string) error
	EnsureEmployer(ctx context.Context, employer domain.SeedEmployer) (employerID int64, err error)
	EnsureEmployerLocation(ctx context.Context, employerID, cityID int64) (locationID int64, err error)
	EnsureEmployerBenefit(ctx context.Context, employerID, benefitID int64) error

	// FirstEmployerLocation returns the lowest-id location of the
	// employer, or (0, nil) when none exists.
	FirstEmployerLocation(ctx context.Context, employerID int64) (int64, error)

	CountOffersByPositionPrefix(ctx context.Context, prefix string) (int, error)
	CreateOffer(ctx context.Context, offer domain.SeedOffer) (int64, error)
}
