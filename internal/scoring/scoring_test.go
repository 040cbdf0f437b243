package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarsPrior(t *testing.T) {
	assert.InDelta(t, 3.8, Stars(0, 0), 1e-9)
}

func TestStarsFirstPositive(t *testing.T) {
	// (10*0.7 + 1) / 11 = 0.7272..., 1 + 4*0.7272... = 3.9090... -> 3.91
	assert.InDelta(t, 3.91, Stars(1, 0), 1e-9)
}

func TestStarsBounds(t *testing.T) {
	cases := []struct{ pos, neg int }{
		{0, 0}, {1, 0}, {0, 1}, {100, 0}, {0, 100},
		{1000, 1}, {1, 1000}, {7, 3}, {50, 50},
	}
	for _, c := range cases {
		got := Stars(c.pos, c.neg)
		assert.GreaterOrEqual(t, got, 1.0, "pos=%d neg=%d", c.pos, c.neg)
		assert.LessOrEqual(t, got, 5.0, "pos=%d neg=%d", c.pos, c.neg)
	}
}

func TestStarsMonotonic(t *testing.T) {
	for pos := 0; pos <= 40; pos++ {
		for neg := 0; neg <= 40; neg++ {
			base := Stars(pos, neg)
			assert.GreaterOrEqual(t, Stars(pos+1, neg), base, "pos=%d neg=%d", pos, neg)
			assert.LessOrEqual(t, Stars(pos, neg+1), base, "pos=%d neg=%d", pos, neg)
		}
	}
}

func TestStarsConvergesToPositiveRatio(t *testing.T) {
	// With volume the prior washes out: 90% positive over 10k events sits
	// near 1 + 4*0.9.
	got := Stars(9000, 1000)
	assert.InDelta(t, 4.6, got, 0.01)
}

func TestStarsNegativeInputsClamped(t *testing.T) {
	assert.Equal(t, Stars(0, 0), Stars(-3, -1))
}
