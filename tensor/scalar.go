// Package tensor provides the small fixed-rank tensor value types used by
// the per-cell evaluation kernels, generic over the coefficient scalar so
// that fields discretized with either plain float64 coefficients or
// forward-mode dual numbers evaluate through the same code path.
package tensor

import "gonum.org/v1/gonum/num/dual"

// Scalar is the set of coefficient types a degree of freedom may carry.
type Scalar interface {
	float64 | dual.Number
}

// Zero returns the additive identity of S.
func Zero[S Scalar]() (z S) {
	return
}

// Scale returns v * x.
func Scale[S Scalar](v S, x float64) S {
	switch t := any(v).(type) {
	case float64:
		return any(t * x).(S)
	case dual.Number:
		return any(dual.Number{Real: t.Real * x, Emag: t.Emag * x}).(S)
	}
	panic("tensor: unsupported scalar type")
}

// Add returns a + b.
func Add[S Scalar](a, b S) S {
	switch t := any(a).(type) {
	case float64:
		return any(t + any(b).(float64)).(S)
	case dual.Number:
		u := any(b).(dual.Number)
		return any(dual.Number{Real: t.Real + u.Real, Emag: t.Emag + u.Emag}).(S)
	}
	panic("tensor: unsupported scalar type")
}

// AddScaled accumulates *dst += v * x.
func AddScaled[S Scalar](dst *S, v S, x float64) {
	*dst = Add(*dst, Scale(v, x))
}

// StructurallyZero reports whether a coefficient is exactly zero in a way
// that makes accumulating it a no-op. A dual number is never structurally
// zero: its derivative part may be nonzero even when its value is zero, so
// it must not be filtered out of an accumulation.
func StructurallyZero[S Scalar](v S) bool {
	switch t := any(v).(type) {
	case float64:
		return t == 0
	case dual.Number:
		return false
	}
	panic("tensor: unsupported scalar type")
}
