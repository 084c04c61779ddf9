package prng_test

import (
	"testing"
	"time"

	"github.com/myrjola/whodunit/internal/prng"
	"github.com/stretchr/testify/require"
)

func TestFloatKnownSequence(t *testing.T) {
	r := prng.New(1)
	want := []float64{
		1103527590.0 / 0x7fffffff,
		377401575.0 / 0x7fffffff,
		662824084.0 / 0x7fffffff,
	}
	for i, w := range want {
		require.InDelta(t, w, r.Float(), 1e-15, "draw %d", i)
	}
	require.Equal(t, 3, r.Draws())
}

func TestSameSeedSameStream(t *testing.T) {
	for _, seed := range []int64{0, 1, -1, 20240615, 1718409600000} {
		a, b := prng.New(seed), prng.New(seed)
		for range 100 {
			v := a.Float()
			require.Equal(t, v, b.Float())
			require.GreaterOrEqual(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	}
}

func TestNegativeSeed(t *testing.T) {
	r := prng.New(-1)
	require.InDelta(t, 1043980748.0/0x7fffffff, r.Float(), 1e-15)
}

func TestShuffleConsumesLenMinusOneDraws(t *testing.T) {
	tests := []struct {
		name  string
		items []int
	}{
		{name: "empty", items: nil},
		{name: "single", items: []int{1}},
		{name: "five", items: []int{1, 2, 3, 4, 5}},
		{name: "eight", items: []int{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := prng.New(42)
			shuffled := prng.Shuffle(r, tt.items)
			require.ElementsMatch(t, tt.items, shuffled)
			want := len(tt.items) - 1
			if want < 0 {
				want = 0
			}
			require.Equal(t, want, r.Draws())
		})
	}
}

func TestShuffleMatchesReferenceWalk(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	// Replay the draws by hand: i runs 3, 2, 1 and swaps with floor(f*(i+1)).
	ref := prng.New(7)
	want := []string{"a", "b", "c", "d"}
	for i := len(want) - 1; i > 0; i-- {
		j := int(ref.Float() * float64(i+1))
		want[i], want[j] = want[j], want[i]
	}

	got := prng.Shuffle(prng.New(7), items)
	require.Equal(t, want, got)
	require.Equal(t, []string{"a", "b", "c", "d"}, items, "input must not be mutated")
}

func TestSeeds(t *testing.T) {
	day := time.Date(2024, time.June, 15, 23, 59, 0, 0, time.UTC)
	require.Equal(t, int64(20240615), prng.TodaySeed(day))
	require.Equal(t, prng.TodaySeed(day), prng.TodaySeed(day.Add(-23*time.Hour)))
	require.Equal(t, day.UnixMilli(), prng.ReplaySeed(day))
	require.NotEqual(t, prng.ReplaySeed(day), prng.ReplaySeed(day.Add(time.Millisecond)))
}
