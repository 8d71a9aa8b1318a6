package fabricate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedIsReproducible(t *testing.T) {
	t.Parallel()

	a := New(42)
	b := New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.FirstName(), b.FirstName())
		assert.Equal(t, a.Company(), b.Company())
		assert.Equal(t, a.IntBetween(1, 100), b.IntBetween(1, 100))
	}
}

func TestIntBetweenBounds(t *testing.T) {
	t.Parallel()

	s := New(7)
	for i := 0; i < 100; i++ {
		v := s.IntBetween(3, 5)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 5)
	}
	assert.Equal(t, 4, s.IntBetween(4, 4))
	assert.Equal(t, 4, s.IntBetween(4, 2))
}

func TestDateBetweenBounds(t *testing.T) {
	t.Parallel()

	s := New(7)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		d := s.DateBetween(start, end)
		assert.False(t, d.Before(start))
		assert.False(t, d.After(end))
	}
	assert.Equal(t, start, s.DateBetween(start, start))
}

func TestSampleInts(t *testing.T) {
	t.Parallel()

	s := New(7)
	ids := []int{1, 2, 3, 4, 5}

	got := s.SampleInts(ids, 3)
	require.Len(t, got, 3)
	seen := map[int]bool{}
	for _, id := range got {
		assert.Contains(t, ids, id)
		assert.False(t, seen[id], "duplicate %d", id)
		seen[id] = true
	}

	assert.Len(t, s.SampleInts(ids, 10), 5)
	assert.Nil(t, s.SampleInts(nil, 3))
}

func TestTextShapes(t *testing.T) {
	t.Parallel()

	s := New(7)
	assert.NotEmpty(t, s.Sentence(12))
	assert.NotEmpty(t, s.Paragraph(3))
	assert.Len(t, s.Phone(), 12)
}
