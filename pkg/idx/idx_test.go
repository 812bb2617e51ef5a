package idx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenreg/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.False(t, id.IsZero())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "nope", "01ARZ3NDEKTSV4RRFFQ69G5FA!"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	require.Equal(t, -1, strings.Compare(a.String(), b.String()))
	require.Equal(t, 1, strings.Compare(b.String(), a.String()))
	require.Equal(t, 0, strings.Compare(a.String(), a.String()))
}

func TestMonotonicWithinSameMillisecond(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	prev := idx.NewAt(at)
	for range 100 {
		next := idx.NewAt(at)
		require.Equal(t, 1, strings.Compare(next.String(), prev.String()))
		prev = next
	}
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)
	require.True(t, id.Time().Equal(tm))

	require.True(t, idx.ID("bogus").Time().IsZero())
}
