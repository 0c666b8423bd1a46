package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesOrderedUniqueIDs(t *testing.T) {
	t.Parallel()

	prev := New()
	for range 100 {
		next := New()
		require.NotEqual(t, prev, next)
		require.True(t, prev.String() < next.String(), "ids must sort by creation order")
		prev = next
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTime(t *testing.T) {
	t.Parallel()

	id := New()
	require.WithinDuration(t, time.Now().UTC(), id.Time(), 5*time.Second)
	require.True(t, Zero.Time().IsZero())
}
