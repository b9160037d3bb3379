package elements

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaussLegendre(t *testing.T) {
	// an N-point rule integrates polynomials through degree 2N-1 exactly
	for n := 1; n <= 5; n++ {
		x, w := GaussLegendre(n)
		assert.Equal(t, n, len(x))
		assert.Equal(t, n, len(w))
		for p := 0; p <= 2*n-1; p++ {
			var (
				got  float64
				want float64
			)
			for i := range x {
				got += w[i] * math.Pow(x[i], float64(p))
			}
			if p%2 == 0 {
				want = 2. / float64(p+1)
			}
			assert.True(t, near(want, got), "n=%d moment %d: want %v got %v", n, p, want, got)
		}
	}

	// tensor product rule integrates over the reference square
	q := CellQuadrature(2)
	assert.Equal(t, 4, q.Len())
	var (
		area float64
		x2y2 float64
	)
	for i, p := range q.Points {
		area += q.Weights[i]
		x2y2 += q.Weights[i] * p[0] * p[0] * p[1] * p[1]
	}
	assert.True(t, near(4, area))
	assert.True(t, near(4./9., x2y2))

	assert.Panics(t, func() { GaussLegendre(0) })
}
