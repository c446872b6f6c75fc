package fdiff

import (
	"math"
	"reflect"
	"testing"
)

func objV2(x, y []float64) {
	y[0] = x[0] * math.Sin(x[1])
	y[1] = x[1] * math.Cos(x[0])
	y[2] = math.Pow(x[0], 3) * math.Pow(x[1], -0.5)
}

func jacV2(x []float64) []float64 {
	return []float64{
		math.Sin(x[1]), x[0] * math.Cos(x[1]),
		-x[1] * math.Sin(x[0]), math.Cos(x[0]),
		3 * math.Pow(x[0], 2) * math.Pow(x[1], -0.5), -0.5 * math.Pow(x[0], 3) * math.Pow(x[1], -1.5),
	}
}

func TestFitBounds(t *testing.T) {

	// tight bounds
	x0 := []float64{0.0, 0.03}
	h0 := []float64{-0.1, -0.1}
	bounds := []Bound{{-0.03, 0.05}, {-0.03, 0.05}}

	for _, tc := range []struct {
		method Method
		step   []float64
		side   []bool
	}{
		{Forward, []float64{0.05, -0.06}, []bool{false, false}},
		{Central, []float64{0.03, -0.03}, []bool{false, true}},
	} {
		s := Spec{N: 2, M: 1, Func: func(x, y []float64) {}, Method: tc.method, Bounds: bounds}
		a, err := s.New()
		if err != nil {
			t.Fatal(err)
		}
		copy(a.step, h0)
		a.fitBounds(x0)
		switch {
		case !relativeEqual(a.step, tc.step, 1e-15):
			t.Fatalf("unexpected adjusted step %v", a.step)
		case !reflect.DeepEqual(a.oneSide, tc.side):
			t.Fatalf("unexpected side flag %v", a.oneSide)
		}
	}
}

func TestChooseStep(t *testing.T) {
	x0 := []float64{1e-5, 0, 1, 1e5}
	for method, rel := range map[Method]float64{Forward: sqrtEps, Central: cubeEps} {
		s := Spec{N: 4, M: 1, Func: func(x, y []float64) {}, Method: method}
		a, _ := s.New()
		a.chooseStep(x0)
		want := []float64{rel, rel, rel, rel * 1e5}
		if !relativeEqual(a.step, want, 1e-12) {
			t.Fatalf("unexpected step %v", a.step)
		}
	}
}

func TestJacobian(t *testing.T) {
	x0 := []float64{1.5, 2.0}
	want := jacV2(x0)

	for method, tol := range map[Method]float64{Forward: 1e-6, Central: 1e-9} {
		s := Spec{N: 2, M: 3, Func: objV2, Method: method}
		a, err := s.New()
		if err != nil {
			t.Fatal(err)
		}
		jac := make([]float64, 6)
		if err = a.Jacobian(x0, jac); err != nil {
			t.Fatal(err)
		}
		if !relativeEqual(jac, want, tol) {
			t.Fatalf("method %d: jacobian %v want %v", method, jac, want)
		}
		if x0[0] != 1.5 || x0[1] != 2.0 {
			t.Fatal("x0 not restored")
		}
	}
}

func TestJacobianAtBound(t *testing.T) {
	x0 := []float64{1.5, 2.0}
	s := Spec{N: 2, M: 3, Func: objV2, Method: Central, Bounds: []Bound{{1.5, 3}, {math.NaN(), 2.0}}}
	a, err := s.New()
	if err != nil {
		t.Fatal(err)
	}
	jac := make([]float64, 6)
	if err = a.Jacobian(x0, jac); err != nil {
		t.Fatal(err)
	}
	if !relativeEqual(jac, jacV2(x0), 1e-8) {
		t.Fatalf("one-sided jacobian %v", jac)
	}
}

func TestSpecErrors(t *testing.T) {
	for _, s := range []Spec{
		{N: 0, M: 1, Func: objV2},
		{N: 2, M: 3},
		{N: 2, M: 3, Func: objV2, Method: 7},
		{N: 2, M: 3, Func: objV2, Bounds: []Bound{{0, 1}}},
		{N: 2, M: 3, Func: objV2, Bounds: []Bound{{2, 1}, {0, 1}}},
	} {
		if _, err := s.New(); err == nil {
			t.Fatalf("expected error for %+v", s)
		}
	}
}

func TestDerivative(t *testing.T) {
	d := Derivative(math.Log, 2)
	if !relativeEqual(d, 0.5, 1e-9) {
		t.Fatalf("derivative %v", d)
	}
}

func relativeEqual[T float64 | []float64](a, b T, tol float64) bool {
	equalWithinRel := func(a, b float64) bool {
		if a == b {
			return true
		}
		delta := math.Abs(a - b)
		return delta/math.Max(math.Abs(a), math.Abs(b)) <= tol
	}
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float64:
		return equalWithinRel(any(a).(float64), any(b).(float64))
	case reflect.Slice:
		a, b := any(a).([]float64), any(b).([]float64)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equalWithinRel(a[i], b[i]) {
				return false
			}
		}
		return true
	}
	return false
}
