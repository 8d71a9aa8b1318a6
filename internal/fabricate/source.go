// Package fabricate produces deterministic synthetic identities and text
// for simulated users and seeded records. A Source is constructed once per
// process from the configured seed and passed to every component that
// fabricates data, so reruns with the same seed are reproducible.
package fabricate

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var firstNames = []string{
	"Anna", "Marek", "Julia", "Piotr", "Ewa", "Tomasz", "Kasia", "Jan",
	"Maria", "Adam", "Ola", "Pawel", "Zofia", "Michal", "Lena", "Krzysztof",
	"Nina", "Bartek", "Iga", "Lukasz",
}

var lastNames = []string{
	"Nowak", "Kowalski", "Wisniewski", "Wojcik", "Kaminski", "Lewandowski",
	"Zielinski", "Szymanski", "Dabrowski", "Kozlowski", "Jankowski",
	"Mazur", "Krawczyk", "Kaczmarek", "Piotrowski", "Grabowski",
}

var companyStems = []string{
	"Borealis", "Quanta", "Vertex", "Halcyon", "Orchid", "Meridian",
	"Cobalt", "Lumen", "Aster", "Pinnacle", "Summit", "Nimbus",
}

var companySuffixes = []string{
	"Labs", "Systems", "Group", "Partners", "Works", "Digital", "Solutions",
}

var positions = []string{
	"Software Engineer", "Data Analyst", "Product Manager", "QA Specialist",
	"DevOps Engineer", "UX Designer", "Account Manager", "Business Analyst",
	"Support Engineer", "Marketing Specialist", "Recruiter", "Technical Writer",
}

var words = []string{
	"alignment", "backlog", "cadence", "delivery", "estimate", "feedback",
	"growth", "handover", "iteration", "kickoff", "launch", "milestone",
	"onboarding", "pipeline", "quality", "release", "scope", "tooling",
	"uptime", "workflow",
}

var degrees = []string{"BSc", "MSc", "Engineer", "BA", "MA", "PhD"}

// Source is a concurrency-safe generator of fabricated data.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Source seeded with seed. Seed 0 means "unseeded": a
// time-derived seed is used and reruns are not reproducible.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

func (s *Source) pick(list []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list[s.rng.Intn(len(list))]
}

func (s *Source) FirstName() string { return s.pick(firstNames) }
func (s *Source) LastName() string  { return s.pick(lastNames) }

func (s *Source) Company() string {
	return s.pick(companyStems) + " " + s.pick(companySuffixes)
}

func (s *Source) JobPosition() string { return s.pick(positions) }
func (s *Source) Word() string        { return s.pick(words) }
func (s *Source) Degree() string      { return s.pick(degrees) }

// Sentence builds a plausible sentence of roughly n words.
func (s *Source) Sentence(n int) string {
	if n <= 0 {
		n = 8
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.Word()
	}
	out := strings.Join(parts, " ")
	return strings.ToUpper(out[:1]) + out[1:] + "."
}

// Paragraph builds n sentences.
func (s *Source) Paragraph(n int) string {
	if n <= 0 {
		n = 3
	}
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = s.Sentence(10)
	}
	return strings.Join(sentences, " ")
}

// IntBetween returns a uniform integer in [min, max].
func (s *Source) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Intn(max-min+1)
}

// DurationBetween returns a uniform duration in [min, max].
func (s *Source) DurationBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + time.Duration(s.rng.Int63n(int64(max-min)+1))
}

// DateBetween returns a uniform date in [start, end], truncated to a day.
func (s *Source) DateBetween(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	s.mu.Lock()
	offset := time.Duration(s.rng.Int63n(int64(end.Sub(start))))
	s.mu.Unlock()
	return start.Add(offset).Truncate(24 * time.Hour)
}

// SampleInts returns up to k distinct values drawn from ids.
func (s *Source) SampleInts(ids []int, k int) []int {
	if k > len(ids) {
		k = len(ids)
	}
	if k <= 0 {
		return nil
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(ids))
	s.mu.Unlock()
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = ids[perm[i]]
	}
	return out
}

// Phone returns a deterministic-format 12-digit phone number string.
func (s *Source) Phone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%012d", s.rng.Int63n(1_000_000_000_000))
}
