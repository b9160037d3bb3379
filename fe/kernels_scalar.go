package fe

import "github.com/nodalfe/gofeval/tensor"

// The accumulation kernels contract a local coefficient array against the
// precomputed shape data tables, producing one field quantity per
// quadrature point. All kernels follow the same skip protocol: a shape
// function that is structurally zero in the view's components contributes
// nothing, and a coefficient that is exactly zero (by the type-aware test
// in tensor.StructurallyZero) is skipped outright rather than multiplied
// through, so the arithmetic that does happen is identical to the
// no-shortcut result.

func scalarValues[S tensor.Scalar](dofValues []S, shapeValues [][]float64,
	sd []ScalarShapeData, values []S) {
	var zero S
	for q := range values {
		values[q] = zero
	}
	for i, d := range sd {
		if !d.Nonzero {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		row := shapeValues[d.Row]
		for q := range values {
			values[q] = tensor.Add(values[q], tensor.Scale(v, row[q]))
		}
	}
}

func scalarGradients[S tensor.Scalar](dofValues []S, shapeGrads [][]tensor.T1F,
	sd []ScalarShapeData, dim int, gradients []tensor.T1[S]) {
	var zero tensor.T1[S]
	for q := range gradients {
		gradients[q] = zero
	}
	for i, d := range sd {
		if !d.Nonzero {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		row := shapeGrads[d.Row]
		for q := range gradients {
			tensor.AddScaledT1(&gradients[q], v, row[q], dim)
		}
	}
}

func scalarHessians[S tensor.Scalar](dofValues []S, shapeHessians [][]tensor.T2F,
	sd []ScalarShapeData, dim int, hessians []tensor.T2[S]) {
	var zero tensor.T2[S]
	for q := range hessians {
		hessians[q] = zero
	}
	for i, d := range sd {
		if !d.Nonzero {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		row := shapeHessians[d.Row]
		for q := range hessians {
			tensor.AddScaledT2(&hessians[q], v, row[q], dim)
		}
	}
}

func scalarThirdDerivatives[S tensor.Scalar](dofValues []S, shapeThirds [][]tensor.T3F,
	sd []ScalarShapeData, dim int, thirds []tensor.T3[S]) {
	var zero tensor.T3[S]
	for q := range thirds {
		thirds[q] = zero
	}
	for i, d := range sd {
		if !d.Nonzero {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		row := shapeThirds[d.Row]
		for q := range thirds {
			tensor.AddScaledT3(&thirds[q], v, row[q], dim)
		}
	}
}

// scalarLaplacians accumulates the trace of each shape Hessian; this is
// the Laplacian without ever forming the full gradient-of-gradient.
func scalarLaplacians[S tensor.Scalar](dofValues []S, shapeHessians [][]tensor.T2F,
	sd []ScalarShapeData, dim int, laplacians []S) {
	var zero S
	for q := range laplacians {
		laplacians[q] = zero
	}
	for i, d := range sd {
		if !d.Nonzero {
			continue
		}
		v := dofValues[i]
		if tensor.StructurallyZero(v) {
			continue
		}
		row := shapeHessians[d.Row]
		for q := range laplacians {
			laplacians[q] = tensor.Add(laplacians[q], tensor.Scale(v, tensor.Trace(row[q], dim)))
		}
	}
}
