package fe

import "github.com/nodalfe/gofeval/tensor"

// Vector-field kernels. Each shape function carries the ternary
// classifier: -2 skips it, a row index takes the single-component fast
// path, and -1 falls back to a loop over the view's sub-components.

func vectorValues[S tensor.Scalar](dofValues []S, shapeValues [][]float64,
	sd []ComponentShapeData, nSub int, values []tensor.T1[S]) {
	var zero tensor.T1[S]
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

func vectorGradients[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, nSub, dim int, gradients []tensor.T2[S]) {
	var zero tensor.T2[S]
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
		if snc != -1 {
			var (
				comp = sd[i].SingleNonzeroIndex
				row  = shapeGrads[snc]
			)
			for q := range gradients {
				tensor.AddScaledT1(&gradients[q][comp], v, row[q], dim)
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeGrads[sd[i].Row[d]]
			for q := range gradients {
				tensor.AddScaledT1(&gradients[q][d], v, row[q], dim)
			}
		}
	}
}

func vectorHessians[S tensor.Scalar](dofValues []S, shapeHessians [][]tensor.T2F,
	sd []ComponentShapeData, nSub, dim int, hessians []tensor.T3[S]) {
	var zero tensor.T3[S]
	for q := range hessians {
		hessians[q] = zero
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
				row  = shapeHessians[snc]
			)
			for q := range hessians {
				tensor.AddScaledT2(&hessians[q][comp], v, row[q], dim)
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeHessians[sd[i].Row[d]]
			for q := range hessians {
				tensor.AddScaledT2(&hessians[q][d], v, row[q], dim)
			}
		}
	}
}

func vectorThirdDerivatives[S tensor.Scalar](dofValues []S, shapeThirds [][]tensor.T3F,
	sd []ComponentShapeData, nSub, dim int, thirds []tensor.T4[S]) {
	var zero tensor.T4[S]
	for q := range thirds {
		thirds[q] = zero
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
				row  = shapeThirds[snc]
			)
			for q := range thirds {
				tensor.AddScaledT3(&thirds[q][comp], v, row[q], dim)
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeThirds[sd[i].Row[d]]
			for q := range thirds {
				tensor.AddScaledT3(&thirds[q][d], v, row[q], dim)
			}
		}
	}
}

func vectorLaplacians[S tensor.Scalar](dofValues []S, shapeHessians [][]tensor.T2F,
	sd []ComponentShapeData, nSub, dim int, laplacians []tensor.T1[S]) {
	var zero tensor.T1[S]
	for q := range laplacians {
		laplacians[q] = zero
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
				row  = shapeHessians[snc]
			)
			for q := range laplacians {
				laplacians[q][comp] = tensor.Add(laplacians[q][comp],
					tensor.Scale(v, tensor.Trace(row[q], dim)))
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeHessians[sd[i].Row[d]]
			for q := range laplacians {
				laplacians[q][d] = tensor.Add(laplacians[q][d],
					tensor.Scale(v, tensor.Trace(row[q], dim)))
			}
		}
	}
}

func vectorSymmetricGradients[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, nSub, dim int, symGradients []tensor.Sym2[S]) {
	var zero tensor.Sym2[S]
	for q := range symGradients {
		symGradients[q] = zero
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
				row  = shapeGrads[snc]
			)
			for q := range symGradients {
				tensor.AddScaledSym2(&symGradients[q], v,
					tensor.SymmetrizeSingleRow(comp, row[q], dim), dim)
			}
			continue
		}
		for q := range symGradients {
			var grad tensor.T2[S]
			for d := 0; d < nSub; d++ {
				if !sd[i].Nonzero[d] {
					continue
				}
				g := shapeGrads[sd[i].Row[d]][q]
				for c := 0; c < dim; c++ {
					grad[d][c] = tensor.Scale(v, g[c])
				}
			}
			tensor.AddSym2(&symGradients[q], tensor.Symmetrize(grad, dim), dim)
		}
	}
}

// vectorDivergences contracts the diagonal of the field's Jacobian: each
// contribution is the comp-th entry of the gradient of the shape function
// that is nonzero in component comp.
func vectorDivergences[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, nSub int, divergences []S) {
	var zero S
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
		if snc != -1 {
			var (
				comp = sd[i].SingleNonzeroIndex
				row  = shapeGrads[snc]
			)
			for q := range divergences {
				divergences[q] = tensor.Add(divergences[q], tensor.Scale(v, row[q][comp]))
			}
			continue
		}
		for d := 0; d < nSub; d++ {
			if !sd[i].Nonzero[d] {
				continue
			}
			row := shapeGrads[sd[i].Row[d]]
			for q := range divergences {
				divergences[q] = tensor.Add(divergences[q], tensor.Scale(v, row[q][d]))
			}
		}
	}
}

// vectorCurls computes the scalar 2D curl (stored in component 0 of the
// output) or the full 3D curl. A 1D curl is not a meaningful operation.
func vectorCurls[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ComponentShapeData, nSub, dim int, curls []tensor.T1[S]) {
	var zero tensor.T1[S]
	for q := range curls {
		curls[q] = zero
	}
	switch dim {
	case 2:
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
				row := shapeGrads[snc]
				if sd[i].SingleNonzeroIndex == 0 {
					for q := range curls {
						curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, -row[q][1]))
					}
				} else {
					for q := range curls {
						curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, row[q][0]))
					}
				}
				continue
			}
			// several nonzero sub-components; handle each in turn
			if sd[i].Nonzero[0] {
				row := shapeGrads[sd[i].Row[0]]
				for q := range curls {
					curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, -row[q][1]))
				}
			}
			if sd[i].Nonzero[1] {
				row := shapeGrads[sd[i].Row[1]]
				for q := range curls {
					curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, row[q][0]))
				}
			}
		}
	case 3:
		for i := range sd {
			snc := sd[i].SingleNonzeroComponent
			if snc == -2 {
				continue
			}
			v := dofValues[i]
			if tensor.StructurallyZero(v) {
				continue
			}
			accumulate := func(d int, row []tensor.T1F) {
				// the shape function's unique nonzero sub-component d
				// feeds the two curl components it affects
				switch d {
				case 0:
					for q := range curls {
						curls[q][1] = tensor.Add(curls[q][1], tensor.Scale(v, row[q][2]))
						curls[q][2] = tensor.Add(curls[q][2], tensor.Scale(v, -row[q][1]))
					}
				case 1:
					for q := range curls {
						curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, -row[q][2]))
						curls[q][2] = tensor.Add(curls[q][2], tensor.Scale(v, row[q][0]))
					}
				case 2:
					for q := range curls {
						curls[q][0] = tensor.Add(curls[q][0], tensor.Scale(v, row[q][1]))
						curls[q][1] = tensor.Add(curls[q][1], tensor.Scale(v, -row[q][0]))
					}
				}
			}
			if snc != -1 {
				accumulate(sd[i].SingleNonzeroIndex, shapeGrads[snc])
				continue
			}
			for d := 0; d < nSub; d++ {
				if sd[i].Nonzero[d] {
					accumulate(d, shapeGrads[sd[i].Row[d]])
				}
			}
		}
	default:
		panic("fe: computing the curl in 1D is not a useful operation")
	}
}
