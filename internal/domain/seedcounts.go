package domain

// SeedCounts reports the outcome of one idempotent seeding step. Values are
// immutable; the add methods return a new value.
type SeedCounts struct {
	Created int
	Reused  int
}

func (c SeedCounts) AddCreated(n int) SeedCounts {
	return SeedCounts{Created: c.Created + n, Reused: c.Reused}
}

func (c SeedCounts) AddReused(n int) SeedCounts {
	return SeedCounts{Created: c.Created, Reused: c.Reused + n}
}

func (c SeedCounts) Total() int {
	return c.Created + c.Reused
}
