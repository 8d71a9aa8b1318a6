package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
)

type AuthMode string

const (
	AuthModeRegister AuthMode = "register"
	AuthModeSeeded   AuthMode = "seeded"
)

// Persona is a closed set of simulated-user classes. Each combines a role
// with an auth strategy (fresh registration vs pre-seeded login).
type Persona int

const (
	CandidateSeeded Persona = iota // c2
	CandidateRegistered            // c1
	EmployerSeeded                 // e2
	EmployerRegistered             // e1
)

func Personas() []Persona {
	return []Persona{CandidateSeeded, CandidateRegistered, EmployerSeeded, EmployerRegistered}
}

func (p Persona) Key() string {
	switch p {
	case CandidateSeeded:
		return "c2"
	case CandidateRegistered:
		return "c1"
	case EmployerSeeded:
		return "e2"
	case EmployerRegistered:
		return "e1"
	}
	return fmt.Sprintf("persona(%d)", int(p))
}

func (p Persona) Role() Role {
	if p == CandidateSeeded || p == CandidateRegistered {
		return RoleCandidate
	}
	return RoleEmployer
}

func (p Persona) AuthMode() AuthMode {
	if p == CandidateSeeded || p == EmployerSeeded {
		return AuthModeSeeded
	}
	return AuthModeRegister
}

func (p Persona) String() string {
	return fmt.Sprintf("%s-%s", p.Role(), p.AuthMode())
}

// PersonaWeights is the relative traffic share of each persona.
type PersonaWeights struct {
	C1 int
	C2 int
	E1 int
	E2 int
}

// ParsePersonaWeights parses weights given in canonical order C2/C1/E2/E1,
// e.g. "80/10/8/2". Accepted separators are '/', ',' and whitespace.
func ParsePersonaWeights(raw string) (PersonaWeights, error) {
	normalized := strings.NewReplacer(",", "/", " ", "/", "\t", "/").Replace(strings.TrimSpace(raw))
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(normalized, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 4 {
		return PersonaWeights{}, fmt.Errorf("invalid persona weights %q: expected 4 integers in order c2/c1/e2/e1 (e.g. \"80/10/8/2\")", raw)
	}

	values := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return PersonaWeights{}, fmt.Errorf("invalid persona weight %q: %w", p, err)
		}
		values[i] = v
	}

	w := PersonaWeights{C2: values[0], C1: values[1], E2: values[2], E1: values[3]}
	if err := w.Validate(); err != nil {
		return PersonaWeights{}, err
	}
	return w, nil
}

func (w PersonaWeights) Validate() error {
	for _, e := range []struct {
		name  string
		value int
	}{
		{"c1", w.C1},
		{"c2", w.C2},
		{"e1", w.E1},
		{"e2", w.E2},
	} {
		if e.value <= 0 {
			return fmt.Errorf("persona weight %s must be a positive integer (got %d)", e.name, e.value)
		}
	}
	return nil
}

func (w PersonaWeights) Sum() int {
	return w.C1 + w.C2 + w.E1 + w.E2
}

func (w PersonaWeights) Of(p Persona) int {
	switch p {
	case CandidateSeeded:
		return w.C2
	case CandidateRegistered:
		return w.C1
	case EmployerSeeded:
		return w.E2
	case EmployerRegistered:
		return w.E1
	}
	return 0
}

// Mix apportions total users across personas proportionally to their
// weights using largest remainders, so the result always sums to total and
// every persona with nonzero weight gets representation for large totals.
func (w PersonaWeights) Mix(total int) map[Persona]int {
	mix := make(map[Persona]int, 4)
	if total <= 0 {
		return mix
	}

	sum := w.Sum()
	type slot struct {
		persona   Persona
		remainder float64
	}
	assigned := 0
	slots := make([]slot, 0, 4)
	for _, p := range Personas() {
		exact := float64(total) * float64(w.Of(p)) / float64(sum)
		whole := int(exact)
		mix[p] = whole
		assigned += whole
		slots = append(slots, slot{persona: p, remainder: exact - float64(whole)})
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].remainder > slots[j].remainder })
	for i := 0; assigned < total; i++ {
		mix[slots[i%len(slots)].persona]++
		assigned++
	}
	return mix
}
