package domain

// Value types exchanged with the seed store. IDs are the target system's
// database keys; zero means "not assigned yet".

type SeedCity struct {
	ID        int64
	Name      string
	Province  string
	ZipCode   string
	CountryID int64
}

// SeedUser carries everything needed to provision one seeded login.
// Password is the shared pool password, stored hashed by the target
// system and echoed verbatim into the pool files.
type SeedUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	CityID    int64
}

type SeedEmployer struct {
	UserID      int64
	CompanyName string
	WebsiteURL  string
	Description string
	IndustryID  int64
}

type SeedOffer struct {
	EmployerID int64
	LocationID int64
	Position   string
	Description string
	Remoteness string
	Contract   string
	Seniority  string
	Wage       int
	Currency   string
	SkillIDs   []int64
}

// Choice values accepted by the target system's job offer fields. The
// seeder draws uniformly from these when fabricating baseline offers.
var (
	RemotenessLevels = []string{"onsite", "hybrid", "remote"}
	ContractTypes    = []string{
		"employment_contract",
		"mandate_contract",
		"b2b_contract",
		"specific_task_contract",
		"internship_contract",
	}
	SeniorityLevels = []string{"INTERN", "JUNIOR", "MID", "SENIOR"}
)
