package fe

import "github.com/nodalfe/gofeval/tensor"

// Kernels for the symmetric-tensor and general-tensor views. The view's
// sub-components are the unrolled entries of the tensor, so the per-shape
// classifier indexes into the unrolled layout and the kernels map it back
// to (i,j) tensor indices while accumulating.

func symTensorValues[S tensor.Scalar](dofValues []S, shapeValues [][]float64,
	sd []ComponentShapeData, nSub int, values []tensor.Sym2[S]) {
	var zero tensor.Sym2[S]
	for q := range values {
		values[q] = zero
	}
	for i := range sd {
		snc := sd[i].SingleNonzeroComponent
		if snc == -2 {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		if snc != -1 {
			var (
				comp = sd[i].SingleNonzeroIndex
				row  = shapeValues[snc]
			)
			for q := range values {
				values[q][comp] = tensor.Add(values[q][comp], tensor.Scale(v, row[q]))
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeValues[sd[i].Row[d]]
			for q := range values {
				values[q][d] = tensor.Add(values[q][d], tensor.Scale(v, row[q]))
			}
		}
	}
}

// symTensorDivergences accumulates div(S)_i = d S_ij / d x_j. A shape
// function whose unique nonzero entry is the unrolled component (ii,jj)
// contributes its jj-th gradient entry to row ii, and when ii != jj the
// symmetric mirror contributes the ii-th entry to row jj.
func symTensorDivergences[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, dim int, divergences []tensor.T1[S]) {
	var zero tensor.T1[S]
	for q := range divergences {
		divergences[q] = zero
	}
	for i := range sd {
		snc := sd[i].SingleNonzeroComponent
		if snc == -2 {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		if snc == -1 {
			// A shape function nonzero in several unrolled components has
			// no single (ii,jj) pair to attribute gradient entries to.
			// No element in use produces this case; see the tensor view
			// divergence for the same restriction.
			panic("fe: symmetric-tensor divergence is not implemented for " +
				"shape functions with several nonzero tensor components")
		}
		var (
			row    = shapeGrads[snc]
			ii, jj = tensor.SymComponents(sd[i].SingleNonzeroIndex, dim)
		)
		for q := range divergences {
			g := row[q]
			divergences[q][ii] = tensor.Add(divergences[q][ii], tensor.Scale(v, g[jj]))
			if ii != jj {
				divergences[q][jj] = tensor.Add(divergences[q][jj], tensor.Scale(v, g[ii]))
			}
		}
	}
}

func tensorValues[S tensor.Scalar](dofValues []S, shapeValues [][]float64,
	sd []ComponentShapeData, nSub, dim int, values []tensor.T2[S]) {
	var zero tensor.T2[S]
	for q := range values {
		values[q] = zero
	}
	for i := range sd {
		snc := sd[i].SingleNonzeroComponent
		if snc == -2 {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		if snc != -1 {
			var (
				ii, jj = tensor.T2Components(sd[i].SingleNonzeroIndex, dim)
				row    = shapeValues[snc]
			)
			for q := range values {
				values[q][ii][jj] = tensor.Add(values[q][ii][jj], tensor.Scale(v, row[q]))
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			var (
				ii, jj = tensor.T2Components(d, dim)
				row    = shapeValues[sd[i].Row[d]]
			)
			for q := range values {
				values[q][ii][jj] = tensor.Add(values[q][ii][jj], tensor.Scale(v, row[q]))
			}
		}
	}
}

// tensorDivergences accumulates div(T)_i = d T_ij / d x_j for a general
// rank-2 tensor field.
func tensorDivergences[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, dim int, divergences []tensor.T1[S]) {
	var zero tensor.T1[S]
	for q := range divergences {
		divergences[q] = zero
	}
	for i := range sd {
		snc := sd[i].SingleNonzeroComponent
		if snc == -2 {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		if snc == -1 {
			panic("fe: tensor divergence is not implemented for shape functions " +
				"with several nonzero tensor components")
		}
		var (
			row    = shapeGrads[snc]
			ii, jj = tensor.T2Components(sd[i].SingleNonzeroIndex, dim)
		)
		for q := range divergences {
			divergences[q][ii] = tensor.Add(divergences[q][ii], tensor.Scale(v, row[q][jj]))
		}
	}
}

// tensorGradients accumulates the rank-3 gradient d T_ij / d x_k.
func tensorGradients[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, dim int, gradients []tensor.T3[S]) {
	var zero tensor.T3[S]
	for q := range gradients {
		gradients[q] = zero
	}
	for i := range sd {
		snc := sd[i].SingleNonzeroComponent
		if snc == -2 {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		if snc == -1 {
			panic("fe: tensor gradient is not implemented for shape functions " +
				"with several nonzero tensor components")
		}
		var (
			row    = shapeGrads[snc]
			ii, jj = tensor.T2Components(sd[i].SingleNonzeroIndex, dim)
		)
		for q := range gradients {
			tensor.AddScaledT1(&gradients[q][ii][jj], v, row[q], dim)
		}
	}
}
