// Package elements provides concrete Mapping and FiniteElement
// collaborators for quadrilateral cells: a bilinear Q1 mapping, a scalar
// Q1 Lagrange element, a vector-valued system of element copies, and the
// Gauss-Legendre quadrature rules they are evaluated with.
package elements

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/tensor"
)

// GaussLegendre computes the N-point Gauss-Legendre rule on [-1,1] by the
// Golub-Welsch method: the nodes are the eigenvalues of the Jacobi matrix
// of the Legendre recurrence, the weights come from the first eigenvector
// components.
func GaussLegendre(n int) (x, w []float64) {
	if n < 1 {
		panic("elements: quadrature needs at least one point")
	}
	if n == 1 {
		return []float64{0}, []float64{2}
	}
	var (
		d0 = make([]float64, n)
		d1 = make([]float64, n-1)
	)
	for i := 0; i < n-1; i++ {
		ip1 := float64(i + 1)
		d1[i] = ip1 / math.Sqrt(4.*ip1*ip1-1.)
	}
	jj := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		jj.SetSym(i, i, d0[i])
		if i < n-1 {
			jj.SetSym(i, i+1, d1[i])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(jj, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	vv := mat.NewDense(n, n, nil)
	eig.VectorsTo(vv)
	w = make([]float64, n)
	for i := 0; i < n; i++ {
		v := vv.At(0, i)
		w[i] = 2. * v * v
	}
	return
}

// LineQuadrature is the N-point Gauss rule as a one-dimensional
// fe.Quadrature, used directly as the face rule of quad cells.
func LineQuadrature(n int) fe.Quadrature {
	x, w := GaussLegendre(n)
	q := fe.Quadrature{
		Points:  make([]tensor.T1F, n),
		Weights: w,
	}
	for i := range x {
		q.Points[i] = tensor.T1F{x[i]}
	}
	return q
}

// CellQuadrature is the tensor product of two N-point Gauss rules on the
// reference square [-1,1]^2, first coordinate fastest.
func CellQuadrature(n int) fe.Quadrature {
	x, w := GaussLegendre(n)
	q := fe.Quadrature{
		Points:  make([]tensor.T1F, n*n),
		Weights: make([]float64, n*n),
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			q.Points[j*n+i] = tensor.T1F{x[i], x[j]}
			q.Weights[j*n+i] = w[i] * w[j]
		}
	}
	return q
}

// FaceQuadratures returns one copy of the N-point line rule per face of a
// quad, the homogeneous collection FEFaceValues accepts.
func FaceQuadratures(n int) []fe.Quadrature {
	return []fe.Quadrature{LineQuadrature(n)}
}

// maxQuadLen is the largest point count in a quadrature collection, the
// scratch table height for contexts whose faces carry different rules.
func maxQuadLen(q []fe.Quadrature) int {
	var n int
	for _, rule := range q {
		if rule.Len() > n {
			n = rule.Len()
		}
	}
	return n
}
