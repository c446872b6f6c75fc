package autodiff

import (
	"math"
	"testing"

	"github.com/curioloop/gibbs/fdiff"
	"github.com/stretchr/testify/assert"
)

func TestArithmetic(t *testing.T) {
	x := Var(2, 1)
	y := Const(3)

	assert.Equal(t, Real{5, 1}, x.Add(y))
	assert.Equal(t, Real{-1, 1}, x.Sub(y))
	assert.Equal(t, Real{6, 3}, x.Mul(y))
	assert.Equal(t, Real{-2, -1}, x.Neg())
	assert.Equal(t, Real{4, 2}, x.Scale(2))
	assert.Equal(t, Real{3, 1}, x.Shift(1))

	q := y.Div(x) // 3/x → -3/x²
	assert.InDelta(t, 1.5, q.V, 1e-15)
	assert.InDelta(t, -0.75, q.D, 1e-15)

	inv := x.Inv()
	assert.InDelta(t, 0.5, inv.V, 1e-15)
	assert.InDelta(t, -0.25, inv.D, 1e-15)
}

func TestElementary(t *testing.T) {
	cases := []struct {
		name string
		f    func(Real) Real
		g    func(float64) float64
	}{
		{"log", Log, math.Log},
		{"log10", Log10, math.Log10},
		{"exp", Exp, math.Exp},
		{"sqrt", Sqrt, math.Sqrt},
		{"pow", func(a Real) Real { return Pow(a, 2.5) }, func(x float64) float64 { return math.Pow(x, 2.5) }},
		{"square", func(a Real) Real { return Pow(a, 2) }, func(x float64) float64 { return x * x }},
		{"composite", func(a Real) Real {
			return Log(a.Mul(a).Shift(1)).Div(Sqrt(a))
		}, func(x float64) float64 {
			return math.Log(x*x+1) / math.Sqrt(x)
		}},
	}
	for _, c := range cases {
		for _, x := range []float64{0.3, 1.7, 12} {
			r := c.f(Var(x, 1))
			assert.InDelta(t, c.g(x), r.V, 1e-12, c.name)
			assert.InDelta(t, fdiff.Derivative(c.g, x), r.D, 1e-7*math.Max(1, math.Abs(r.D)), c.name)
		}
	}
}

func TestReductions(t *testing.T) {
	xs := Seed(nil, []float64{1, 2, 3}, 1, 1)
	assert.Equal(t, Real{6, 1}, Sum(xs...))
	assert.Equal(t, Real{2*1 + 3*2 + 4*3, 3}, Dot([]float64{2, 3, 4}, xs))
	assert.Equal(t, []float64{1, 2, 3}, Values(nil, xs))
	assert.Equal(t, []float64{0, 1, 0}, Derivatives(nil, xs))

	assert.Equal(t, Real{V: 1e-16}, Max(Var(1e-20, 1), 1e-16))
	assert.Equal(t, Real{5, 1}, Max(Var(5, 1), 1e-16))
	assert.False(t, Real{math.NaN(), 0}.IsFinite())
	assert.True(t, Real{1, 2}.IsFinite())
}
