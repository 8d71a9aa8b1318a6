// Package postgres implements the seed store against the target system's
// database. Every get-or-create is a natural-key SELECT followed by an
// INSERT ... RETURNING id on miss; no cross-entity transactions, since
// idempotence comes from the lookups, not from rollback.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	_ "github.com/lib/pq"

	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/ports"
)

var (
	countryTable          = goqu.T("country")
	cityTable             = goqu.T("city")
	userTable             = goqu.T("users")
	candidateTable        = goqu.T("candidate")
	employerTable         = goqu.T("employer")
	employerLocationTable = goqu.T("employer_location")
	employerBenefitTable  = goqu.T("employer_benefit")
	jobOfferTable         = goqu.T("job_offer")
	jobOfferSkillTable    = goqu.T("job_offer_skill")
)

// namedTables maps the flat name-keyed reference kinds to their tables.
var namedTables = map[ports.NamedKind]exp.IdentifierExpression{
	ports.KindIndustry: goqu.T("industry"),
	ports.KindSkill:    goqu.T("skill"),
	ports.KindBenefit:  goqu.T("benefit"),
}

type Store struct {
	db    *goqu.Database
	clock ports.Clock
}

// Open connects to the target database. The caller owns the handle and
// should ping it before seeding so connectivity failures surface early.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return db, nil
}

func NewStore(db *sql.DB, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Store{db: goqu.New("postgres", db), clock: clock}
}

func (s *Store) getID(ctx context.Context, table exp.IdentifierExpression, where goqu.Expression) (int64, bool, error) {
	var id int64
	found, err := s.db.From(table).Select(goqu.C("id")).Where(where).ScanValContext(ctx, &id)
	if err != nil {
		return 0, false, err
	}
	return id, found, nil
}

func (s *Store) insertReturningID(ctx context.Context, table exp.IdentifierExpression, row goqu.Record) (int64, error) {
	var id int64
	_, err := s.db.Insert(table).Rows(row).Returning(goqu.C("id")).Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetOrCreateCountry(ctx context.Context, name string) (int64, bool, error) {
	id, found, err := s.getID(ctx, countryTable, goqu.C("name").Eq(name))
	if err != nil {
		return 0, false, fmt.Errorf("lookup country %q: %w", name, err)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertReturningID(ctx, countryTable, goqu.Record{"name": name})
	if err != nil {
		return 0, false, fmt.Errorf("insert country %q: %w", name, err)
	}
	return id, true, nil
}

func (s *Store) GetOrCreateCity(ctx context.Context, city domain.SeedCity) (int64, bool, error) {
	where := goqu.And(
		goqu.C("name").Eq(city.Name),
		goqu.C("province").Eq(city.Province),
		goqu.C("zip_code").Eq(city.ZipCode),
		goqu.C("country_id").Eq(city.CountryID),
	)
	id, found, err := s.getID(ctx, cityTable, where)
	if err != nil {
		return 0, false, fmt.Errorf("lookup city %q: %w", city.Name, err)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertReturningID(ctx, cityTable, goqu.Record{
		"name":       city.Name,
		"province":   city.Province,
		"zip_code":   city.ZipCode,
		"country_id": city.CountryID,
	})
	if err != nil {
		return 0, false, fmt.Errorf("insert city %q: %w", city.Name, err)
	}
	return id, true, nil
}

func (s *Store) GetOrCreateNamed(ctx context.Context, kind ports.NamedKind, name string) (int64, bool, error) {
	table, ok := namedTables[kind]
	if !ok {
		return 0, false, fmt.Errorf("unknown reference kind %q", kind)
	}
	id, found, err := s.getID(ctx, table, goqu.C("name").Eq(name))
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %q: %w", kind, name, err)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertReturningID(ctx, table, goqu.Record{"name": name})
	if err != nil {
		return 0, false, fmt.Errorf("insert %s %q: %w", kind, name, err)
	}
	return id, true, nil
}

func (s *Store) GetOrCreateUser(ctx context.Context, user domain.SeedUser) (int64, bool, error) {
	id, found, err := s.getID(ctx, userTable, goqu.C("email").Eq(user.Email))
	if err != nil {
		return 0, false, fmt.Errorf("lookup user %q: %w", user.Email, err)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertReturningID(ctx, userTable, goqu.Record{
		"email":        user.Email,
		"password":     user.Password,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"phone_number": user.Phone,
		"city_id":      user.CityID,
		"date_joined":  s.clock.Now(),
		"is_active":    true,
	})
	if err != nil {
		return 0, false, fmt.Errorf("insert user %q: %w", user.Email, err)
	}
	return id, true, nil
}

func (s *Store) EnsureCandidate(ctx context.Context, userID int64, about string) error {
	_, found, err := s.getID(ctx, candidateTable, goqu.C("user_id").Eq(userID))
	if err != nil {
		return fmt.Errorf("lookup candidate for user %d: %w", userID, err)
	}
	if found {
		return nil
	}
	if _, err := s.insertReturningID(ctx, candidateTable, goqu.Record{
		"user_id": userID,
		"about":   about,
	}); err != nil {
		return fmt.Errorf("insert candidate for user %d: %w", userID, err)
	}
	return nil
}

func (s *Store) EnsureEmployer(ctx context.Context, employer domain.SeedEmployer) (int64, error) {
	id, found, err := s.getID(ctx, employerTable, goqu.C("user_id").Eq(employer.UserID))
	if err != nil {
		return 0, fmt.Errorf("lookup employer for user %d: %w", employer.UserID, err)
	}
	if found {
		return id, nil
	}
	id, err = s.insertReturningID(ctx, employerTable, goqu.Record{
		"user_id":      employer.UserID,
		"company_name": employer.CompanyName,
		"website_url":  employer.WebsiteURL,
		"description":  employer.Description,
		"industry_id":  employer.IndustryID,
	})
	if err != nil {
		return 0, fmt.Errorf("insert employer for user %d: %w", employer.UserID, err)
	}
	return id, nil
}

func (s *Store) EnsureEmployerLocation(ctx context.Context, employerID, cityID int64) (int64, error) {
	where := goqu.And(goqu.C("employer_id").Eq(employerID), goqu.C("city_id").Eq(cityID))
	id, found, err := s.getID(ctx, employerLocationTable, where)
	if err != nil {
		return 0, fmt.Errorf("lookup location for employer %d: %w", employerID, err)
	}
	if found {
		return id, nil
	}
	id, err = s.insertReturningID(ctx, employerLocationTable, goqu.Record{
		"employer_id": employerID,
		"city_id":     cityID,
	})
	if err != nil {
		return 0, fmt.Errorf("insert location for employer %d: %w", employerID, err)
	}
	return id, nil
}

func (s *Store) EnsureEmployerBenefit(ctx context.Context, employerID, benefitID int64) error {
	where := goqu.And(goqu.C("employer_id").Eq(employerID), goqu.C("benefit_id").Eq(benefitID))
	_, found, err := s.getID(ctx, employerBenefitTable, where)
	if err != nil {
		return fmt.Errorf("lookup benefit for employer %d: %w", employerID, err)
	}
	if found {
		return nil
	}
	if _, err := s.insertReturningID(ctx, employerBenefitTable, goqu.Record{
		"employer_id": employerID,
		"benefit_id":  benefitID,
	}); err != nil {
		return fmt.Errorf("insert benefit for employer %d: %w", employerID, err)
	}
	return nil
}

func (s *Store) FirstEmployerLocation(ctx context.Context, employerID int64) (int64, error) {
	var id int64
	found, err := s.db.From(employerLocationTable).
		Select(goqu.C("id")).
		Where(goqu.C("employer_id").Eq(employerID)).
		Order(goqu.C("id").Asc()).
		Limit(1).
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, fmt.Errorf("first location for employer %d: %w", employerID, err)
	}
	if !found {
		return 0, nil
	}
	return id, nil
}

func (s *Store) CountOffersByPositionPrefix(ctx context.Context, prefix string) (int, error) {
	var count int64
	_, err := s.db.From(jobOfferTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C("position").Like(prefix+"%")).
		ScanValContext(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("count offers with prefix %q: %w", prefix, err)
	}
	return int(count), nil
}

func (s *Store) CreateOffer(ctx context.Context, offer domain.SeedOffer) (int64, error) {
	id, err := s.insertReturningID(ctx, jobOfferTable, goqu.Record{
		"employer_id": offer.EmployerID,
		"location_id": offer.LocationID,
		"position":    offer.Position,
		"description": offer.Description,
		"remoteness":  offer.Remoteness,
		"contract":    offer.Contract,
		"seniority":   offer.Seniority,
		"wage":        offer.Wage,
		"currency":    offer.Currency,
		"created_at":  s.clock.Now(),
	})
	if err != nil {
		return 0, fmt.Errorf("insert offer %q: %w", offer.Position, err)
	}

	for _, skillID := range offer.SkillIDs {
		where := goqu.And(goqu.C("offer_id").Eq(id), goqu.C("skill_id").Eq(skillID))
		_, found, err := s.getID(ctx, jobOfferSkillTable, where)
		if err != nil {
			return 0, fmt.Errorf("lookup skill %d on offer %d: %w", skillID, id, err)
		}
		if found {
			continue
		}
		if _, err := s.insertReturningID(ctx, jobOfferSkillTable, goqu.Record{
			"offer_id": id,
			"skill_id": skillID,
		}); err != nil {
			return 0, fmt.Errorf("attach skill %d to offer %d: %w", skillID, id, err)
		}
	}
	return id, nil
}
