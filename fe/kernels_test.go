package fe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/dual"

	"github.com/nodalfe/gofeval/tensor"
)

// twoCompBase is a primitive 2-component layout with two shape functions
// per component: s0,s2 -> component 0, s1,s3 -> component 1.
func twoCompBase() *valuesBase {
	el := newStub(2,
		[]bool{true, false},
		[]bool{false, true},
		[]bool{true, false},
		[]bool{false, true},
	)
	return testBase(el, 2, 2)
}

func fillValues(nRows, nq int, f func(r, q int) float64) [][]float64 {
	vals := make([][]float64, nRows)
	for r := range vals {
		vals[r] = make([]float64, nq)
		for q := range vals[r] {
			vals[r][q] = f(r, q)
		}
	}
	return vals
}

func fillGrads(nRows, nq int, f func(r, q, d int) float64) [][]tensor.T1F {
	grads := make([][]tensor.T1F, nRows)
	for r := range grads {
		grads[r] = make([]tensor.T1F, nq)
		for q := range grads[r] {
			for d := 0; d < 2; d++ {
				grads[r][q][d] = f(r, q, d)
			}
		}
	}
	return grads
}

func fillHessians(nRows, nq int, f func(r, q, i, j int) float64) [][]tensor.T2F {
	hess := make([][]tensor.T2F, nRows)
	for r := range hess {
		hess[r] = make([]tensor.T2F, nq)
		for q := range hess[r] {
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					hess[r][q][i][j] = f(r, q, i, j)
				}
			}
		}
	}
	return hess
}

func TestZeroCoefficientInvariance(t *testing.T) {
	// tables poisoned with NaN: if a kernel multiplied a zero coefficient
	// through instead of skipping it, NaN would leak into the output
	var (
		b     = twoCompBase()
		nq    = 3
		nan   = math.NaN()
		vals  = fillValues(4, nq, func(r, q int) float64 { return nan })
		grads = fillGrads(4, nq, func(r, q, d int) float64 { return nan })
		hess  = fillHessians(4, nq, func(r, q, i, j int) float64 { return nan })
		zero  = make([]float64, 4)
		sv    = newScalarView(b, 0)
		vd    = buildComponentShapeData(b, "vector", 0, 2)
	)

	outS := make([]float64, nq)
	scalarValues(zero, vals, sv.shapeData, outS)
	for _, v := range outS {
		assert.Equal(t, 0.0, v)
	}
	scalarLaplacians(zero, hess, sv.shapeData, 2, outS)
	for _, v := range outS {
		assert.Equal(t, 0.0, v)
	}

	outG := make([]tensor.T1[float64], nq)
	scalarGradients(zero, grads, sv.shapeData, 2, outG)
	for _, g := range outG {
		assert.Equal(t, tensor.T1F{}, g)
	}

	outV := make([]tensor.T1[float64], nq)
	vectorValues(zero, vals, vd, 2, outV)
	for _, v := range outV {
		assert.Equal(t, tensor.T1F{}, v)
	}
	outVG := make([]tensor.T2[float64], nq)
	vectorGradients(zero, grads, vd, 2, 2, outVG)
	for _, g := range outVG {
		assert.Equal(t, tensor.T2F{}, g)
	}
	outDiv := make([]float64, nq)
	vectorDivergences(zero, grads, vd, 2, outDiv)
	for _, v := range outDiv {
		assert.Equal(t, 0.0, v)
	}
	outCurl := make([]tensor.T1[float64], nq)
	vectorCurls(zero, grads, vd, 2, 2, outCurl)
	for _, v := range outCurl {
		assert.Equal(t, tensor.T1F{}, v)
	}
	outSym := make([]tensor.Sym2[float64], nq)
	vectorSymmetricGradients(zero, grads, vd, 2, 2, outSym)
	for _, v := range outSym {
		assert.Equal(t, tensor.Sym2F{}, v)
	}

	var (
		thirds   = make([][]tensor.T3F, 4)
		outH     = make([]tensor.T2[float64], nq)
		outT3    = make([]tensor.T3[float64], nq)
		outVH    = make([]tensor.T3[float64], nq)
		outVL    = make([]tensor.T1[float64], nq)
		outVT    = make([]tensor.T4[float64], nq)
	)
	for r := range thirds {
		thirds[r] = make([]tensor.T3F, nq)
	}
	scalarHessians(zero, hess, sv.shapeData, 2, outH)
	for _, h := range outH {
		assert.Equal(t, tensor.T2F{}, h)
	}
	scalarThirdDerivatives(zero, thirds, sv.shapeData, 2, outT3)
	for _, d3 := range outT3 {
		assert.Equal(t, tensor.T3F{}, d3)
	}
	vectorHessians(zero, hess, vd, 2, 2, outVH)
	for _, h := range outVH {
		assert.Equal(t, tensor.T3F{}, h)
	}
	vectorLaplacians(zero, hess, vd, 2, 2, outVL)
	for _, l := range outVL {
		assert.Equal(t, tensor.T1F{}, l)
	}
	vectorThirdDerivatives(zero, thirds, vd, 2, 2, outVT)
	for _, d4 := range outVT {
		assert.Equal(t, tensor.T4F{}, d4)
	}

	// tensor views over a 4-component layout
	masks := make([][]bool, 4)
	for i := range masks {
		m := make([]bool, 4)
		m[i] = true
		masks[i] = m
	}
	var (
		bT    = testBase(newStub(4, masks...), 2, 2)
		td    = buildComponentShapeData(bT, "tensor", 0, 4)
		symD  = buildComponentShapeData(testBase(newStub(3,
			[]bool{true, false, false}, []bool{false, true, false},
			[]bool{false, false, true}), 2, 2), "symmetric tensor", 0, 3)
		zero4 = make([]float64, 4)
		zero3 = make([]float64, 3)
	)
	outSymV := make([]tensor.Sym2[float64], nq)
	symTensorValues(zero3, vals[:3], symD, 3, outSymV)
	for _, v := range outSymV {
		assert.Equal(t, tensor.Sym2F{}, v)
	}
	outT1 := make([]tensor.T1[float64], nq)
	symTensorDivergences(zero3, grads[:3], symD, 2, outT1)
	for _, v := range outT1 {
		assert.Equal(t, tensor.T1F{}, v)
	}
	outT2 := make([]tensor.T2[float64], nq)
	tensorValues(zero4, vals, td, 4, 2, outT2)
	for _, v := range outT2 {
		assert.Equal(t, tensor.T2F{}, v)
	}
	tensorDivergences(zero4, grads, td, 2, outT1)
	for _, v := range outT1 {
		assert.Equal(t, tensor.T1F{}, v)
	}
	tensorGradients(zero4, grads, td, 2, outT3)
	for _, v := range outT3 {
		assert.Equal(t, tensor.T3F{}, v)
	}
}

func TestKernelLinearity(t *testing.T) {
	var (
		b     = twoCompBase()
		nq    = 3
		vals  = fillValues(4, nq, func(r, q int) float64 { return float64(r+1) * float64(q+2) * 0.25 })
		grads = fillGrads(4, nq, func(r, q, d int) float64 { return float64(r+1)*0.5 - float64(q*d)*0.125 })
		c1    = []float64{1, -2, 0.5, 3}
		c2    = []float64{0, 4, -1.5, 0.25}
		a, bb = 2.0, -0.75
		sv    = newScalarView(b, 0)
		vd    = buildComponentShapeData(b, "vector", 0, 2)
	)

	comb := make([]float64, 4)
	for i := range comb {
		comb[i] = a*c1[i] + bb*c2[i]
	}

	var (
		o1 = make([]float64, nq)
		o2 = make([]float64, nq)
		oc = make([]float64, nq)
	)
	scalarValues(c1, vals, sv.shapeData, o1)
	scalarValues(c2, vals, sv.shapeData, o2)
	scalarValues(comb, vals, sv.shapeData, oc)
	for q := 0; q < nq; q++ {
		assert.True(t, near(a*o1[q]+bb*o2[q], oc[q]))
	}

	var (
		g1 = make([]tensor.T2[float64], nq)
		g2 = make([]tensor.T2[float64], nq)
		gc = make([]tensor.T2[float64], nq)
	)
	vectorGradients(c1, grads, vd, 2, 2, g1)
	vectorGradients(c2, grads, vd, 2, 2, g2)
	vectorGradients(comb, grads, vd, 2, 2, gc)
	for q := 0; q < nq; q++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.True(t, near(a*g1[q][i][j]+bb*g2[q][i][j], gc[q][i][j]))
			}
		}
	}

	var (
		k1 = make([]tensor.T1[float64], nq)
		k2 = make([]tensor.T1[float64], nq)
		kc = make([]tensor.T1[float64], nq)
	)
	vectorCurls(c1, grads, vd, 2, 2, k1)
	vectorCurls(c2, grads, vd, 2, 2, k2)
	vectorCurls(comb, grads, vd, 2, 2, kc)
	for q := 0; q < nq; q++ {
		assert.True(t, near(a*k1[q][0]+bb*k2[q][0], kc[q][0]))
	}
}

func TestLaplacianIsHessianTrace(t *testing.T) {
	var (
		b      = twoCompBase()
		nq     = 4
		hess   = fillHessians(4, nq, func(r, q, i, j int) float64 { return float64(r)*1.5 + float64(q) - float64(i*2+j)*0.5 })
		coeffs = []float64{0.5, -1, 2, 0.125}
		sv     = newScalarView(b, 0)
		vd     = buildComponentShapeData(b, "vector", 0, 2)
	)

	var (
		lap  = make([]float64, nq)
		hout = make([]tensor.T2[float64], nq)
	)
	scalarLaplacians(coeffs, hess, sv.shapeData, 2, lap)
	scalarHessians(coeffs, hess, sv.shapeData, 2, hout)
	for q := 0; q < nq; q++ {
		assert.True(t, near(tensor.Trace(hout[q], 2), lap[q]))
	}

	var (
		vlap  = make([]tensor.T1[float64], nq)
		vhout = make([]tensor.T3[float64], nq)
	)
	vectorLaplacians(coeffs, hess, vd, 2, 2, vlap)
	vectorHessians(coeffs, hess, vd, 2, 2, vhout)
	for q := 0; q < nq; q++ {
		for c := 0; c < 2; c++ {
			assert.True(t, near(tensor.Trace(vhout[q][c], 2), vlap[q][c]))
		}
	}
}

func TestCurl2D(t *testing.T) {
	var (
		b  = twoCompBase()
		nq = 2
		vd = buildComponentShapeData(b, "vector", 0, 2)
	)
	// constant gradients: row 0 (comp 0 shape) has grad (3,5),
	// row 1 (comp 1 shape) has grad (7,1); rows 2,3 zero
	grads := fillGrads(4, nq, func(r, q, d int) float64 {
		switch {
		case r == 0 && d == 0:
			return 3
		case r == 0 && d == 1:
			return 5
		case r == 1 && d == 0:
			return 7
		case r == 1 && d == 1:
			return 1
		}
		return 0
	})

	out := make([]tensor.T1[float64], nq)
	// curl = d(comp1)/dx - d(comp0)/dy = 1*7 - 2*5
	vectorCurls([]float64{2, 1, 0, 0}, grads, vd, 2, 2, out)
	for q := 0; q < nq; q++ {
		assert.True(t, near(-3, out[q][0]))
	}

	assert.Panics(t, func() {
		vectorCurls([]float64{2, 1, 0, 0}, grads, vd, 2, 1, out)
	})
}

func TestSymTensorDivergence(t *testing.T) {
	// a symmetric 2D tensor view has three unrolled components:
	// (0,0), (1,1), (0,1)
	el := newStub(3,
		[]bool{true, false, false},
		[]bool{false, true, false},
		[]bool{false, false, true},
	)
	var (
		b  = testBase(el, 2, 2)
		sd = buildComponentShapeData(b, "symmetric tensor", 0, 3)
		nq = 2
	)
	grads := fillGrads(3, nq, func(r, q, d int) float64 {
		if r == 2 {
			return float64(d + 1) // grad of the off-diagonal shape: (1,2)
		}
		return 0
	})

	// the off-diagonal source (0,1) feeds both output rows
	out := make([]tensor.T1[float64], nq)
	symTensorDivergences([]float64{0, 0, 2}, grads, sd, 2, out)
	for q := 0; q < nq; q++ {
		assert.True(t, near(2*2, out[q][0])) // v * g[1]
		assert.True(t, near(2*1, out[q][1])) // v * g[0]
	}

	// diagonal source (1,1) feeds only row 1 with g[1]
	grads2 := fillGrads(3, nq, func(r, q, d int) float64 {
		if r == 1 {
			return 3 - float64(d)
		}
		return 0
	})
	symTensorDivergences([]float64{0, 1, 0}, grads2, sd, 2, out)
	for q := 0; q < nq; q++ {
		assert.True(t, near(0, out[q][0]))
		assert.True(t, near(2, out[q][1]))
	}

	// a shape nonzero in several tensor components has no implemented
	// contraction and must fail loudly
	multi := newStub(3, []bool{true, false, true})
	bMulti := testBase(multi, 2, 2)
	sdMulti := buildComponentShapeData(bMulti, "symmetric tensor", 0, 3)
	gradsMulti := fillGrads(2, nq, func(r, q, d int) float64 { return 1 })
	assert.Panics(t, func() {
		symTensorDivergences([]float64{1}, gradsMulti, sdMulti, 2, out)
	})
}

func TestTensorKernels(t *testing.T) {
	// general 2D tensor view: four unrolled components, row-major (i,j)
	masks := make([][]bool, 4)
	for i := range masks {
		m := make([]bool, 4)
		m[i] = true
		masks[i] = m
	}
	var (
		el = newStub(4, masks...)
		b  = testBase(el, 2, 2)
		sd = buildComponentShapeData(b, "tensor", 0, 4)
		nq = 2
	)
	vals := fillValues(4, nq, func(r, q int) float64 { return float64(r + 1) })
	outT := make([]tensor.T2[float64], nq)
	tensorValues([]float64{1, 1, 1, 1}, vals, sd, 4, 2, outT)
	for q := 0; q < nq; q++ {
		assert.True(t, near(1, outT[q][0][0]))
		assert.True(t, near(2, outT[q][0][1]))
		assert.True(t, near(3, outT[q][1][0]))
		assert.True(t, near(4, outT[q][1][1]))
	}

	// component (0,1) contributes g[1] to divergence row 0
	grads := fillGrads(4, nq, func(r, q, d int) float64 {
		if r == 1 {
			return float64(d) + 5 // (5,6)
		}
		return 0
	})
	outDiv := make([]tensor.T1[float64], nq)
	tensorDivergences([]float64{0, 3, 0, 0}, grads, sd, 2, outDiv)
	for q := 0; q < nq; q++ {
		assert.True(t, near(18, outDiv[q][0])) // 3 * 6
		assert.True(t, near(0, outDiv[q][1]))
	}

	outGrad := make([]tensor.T3[float64], nq)
	tensorGradients([]float64{0, 3, 0, 0}, grads, sd, 2, outGrad)
	for q := 0; q < nq; q++ {
		assert.True(t, near(15, outGrad[q][0][1][0]))
		assert.True(t, near(18, outGrad[q][0][1][1]))
		assert.True(t, near(0, outGrad[q][1][0][0]))
	}

	multi := newStub(4, []bool{true, true, false, false})
	bMulti := testBase(multi, 2, 2)
	sdMulti := buildComponentShapeData(bMulti, "tensor", 0, 4)
	gm := fillGrads(2, nq, func(r, q, d int) float64 { return 1 })
	assert.Panics(t, func() {
		tensorDivergences([]float64{1}, gm, sdMulti, 2, outDiv)
	})
	assert.Panics(t, func() {
		tensorGradients([]float64{1}, gm, sdMulti, 2, outGrad)
	})
}

func TestDualCoefficients(t *testing.T) {
	var (
		b    = twoCompBase()
		nq   = 2
		vals = fillValues(4, nq, func(r, q int) float64 { return float64(r+1) + float64(q) })
		sv   = newScalarView(b, 0)
	)
	// value part zero, derivative part one: must not be filtered out
	coeffs := []dual.Number{{Real: 0, Emag: 1}, {}, {}, {}}
	out := make([]dual.Number, nq)
	scalarValues(coeffs, vals, sv.shapeData, out)
	for q := 0; q < nq; q++ {
		assert.True(t, near(0, out[q].Real))
		assert.True(t, near(vals[0][q], out[q].Emag))
	}
}

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}
