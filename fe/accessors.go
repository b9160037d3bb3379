package fe

import (
	"fmt"

	"github.com/nodalfe/gofeval/tensor"
	"github.com/nodalfe/gofeval/utils"
)

// Whole-element accessors. These evaluate the full field carried by the
// element rather than a component window: single-component elements get
// flat outputs, multi-component elements get one entry per component and
// quadrature point. The Indexed flavors take an explicit local-to-global
// index array whose length may be a whole multiple m of dofs-per-cell, in
// which case the element is treated as m independent copies and the output
// spans m*nComponents components. pointsFastest selects the transposed
// output layout [component][point] instead of [point][component].

func (b *valuesBase) requireScalarElement(what string) {
	if b.element.NComponents() != 1 {
		panic(fmt.Sprintf("fe: %s needs a single-component element; this one has %d components, "+
			"use the vector-valued accessor or a view", what, b.element.NComponents()))
	}
}

func (b *valuesBase) indexedMultiple(indices utils.Index, what string) int {
	if len(indices) == 0 || len(indices)%b.dofsPerCell != 0 {
		panic(fmt.Sprintf("fe: %s got %d indices, want a positive multiple of dofs-per-cell (%d)",
			what, len(indices), b.dofsPerCell))
	}
	return len(indices) / b.dofsPerCell
}

func (b *valuesBase) gatherBlocks(src VectorSource, indices utils.Index) []float64 {
	vals := make([]float64, len(indices))
	gatherIndexed(src, indices, vals)
	return vals
}

// Scalar-element flavors.

func (b *valuesBase) GetFunctionValues(src VectorSource, out []float64) {
	b.requireScalarElement("GetFunctionValues")
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionValues(b.scratchVals, out)
}

func (b *valuesBase) GetFunctionValuesIndexed(src VectorSource, indices utils.Index, out []float64) {
	b.requireScalarElement("GetFunctionValuesIndexed")
	if b.indexedMultiple(indices, "GetFunctionValuesIndexed") != 1 {
		panic("fe: GetFunctionValuesIndexed takes exactly dofs-per-cell indices; " +
			"use the vector-valued accessor for component multiples")
	}
	gatherIndexed(src, indices, b.scratchVals)
	b.doFunctionValues(b.scratchVals, out)
}

func (b *valuesBase) doFunctionValues(dofValues, out []float64) {
	b.require(UpdateValues, "function values")
	checkKernelSizes(b, len(dofValues), len(out), "GetFunctionValues")
	for q := range out {
		out[q] = 0
	}
	for i, v := range dofValues {
		if v == 0 {
			continue
		}
		row, _ := b.rows.Row(i, 0)
		rowVals := b.shapes.Values[row]
		for q := range out {
			out[q] += v * rowVals[q]
		}
	}
}

func (b *valuesBase) GetFunctionGradients(src VectorSource, out []tensor.T1F) {
	b.requireScalarElement("GetFunctionGradients")
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionGradients(b.scratchVals, out)
}

func (b *valuesBase) doFunctionGradients(dofValues []float64, out []tensor.T1F) {
	b.require(UpdateGradients, "function gradients")
	checkKernelSizes(b, len(dofValues), len(out), "GetFunctionGradients")
	for q := range out {
		out[q] = tensor.T1F{}
	}
	for i, v := range dofValues {
		if v == 0 {
			continue
		}
		row, _ := b.rows.Row(i, 0)
		rowGrads := b.shapes.Gradients[row]
		for q := range out {
			tensor.AddScaledT1(&out[q], v, rowGrads[q], b.spacedim)
		}
	}
}

func (b *valuesBase) GetFunctionHessians(src VectorSource, out []tensor.T2F) {
	b.requireScalarElement("GetFunctionHessians")
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionHessians(b.scratchVals, out)
}

func (b *valuesBase) doFunctionHessians(dofValues []float64, out []tensor.T2F) {
	b.require(UpdateHessians, "function hessians")
	checkKernelSizes(b, len(dofValues), len(out), "GetFunctionHessians")
	for q := range out {
		out[q] = tensor.T2F{}
	}
	for i, v := range dofValues {
		if v == 0 {
			continue
		}
		row, _ := b.rows.Row(i, 0)
		rowHess := b.shapes.Hessians[row]
		for q := range out {
			tensor.AddScaledT2(&out[q], v, rowHess[q], b.spacedim)
		}
	}
}

func (b *valuesBase) GetFunctionLaplacians(src VectorSource, out []float64) {
	b.requireScalarElement("GetFunctionLaplacians")
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionLaplacians(b.scratchVals, out)
}

func (b *valuesBase) doFunctionLaplacians(dofValues, out []float64) {
	b.require(UpdateHessians, "function laplacians")
	checkKernelSizes(b, len(dofValues), len(out), "GetFunctionLaplacians")
	for q := range out {
		out[q] = 0
	}
	for i, v := range dofValues {
		if v == 0 {
			continue
		}
		row, _ := b.rows.Row(i, 0)
		rowHess := b.shapes.Hessians[row]
		for q := range out {
			out[q] += v * tensor.Trace(rowHess[q], b.spacedim)
		}
	}
}

func (b *valuesBase) GetFunctionThirdDerivatives(src VectorSource, out []tensor.T3F) {
	b.requireScalarElement("GetFunctionThirdDerivatives")
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionThirdDerivatives(b.scratchVals, out)
}

func (b *valuesBase) doFunctionThirdDerivatives(dofValues []float64, out []tensor.T3F) {
	b.require(Update3rdDerivatives, "function third derivatives")
	checkKernelSizes(b, len(dofValues), len(out), "GetFunctionThirdDerivatives")
	for q := range out {
		out[q] = tensor.T3F{}
	}
	for i, v := range dofValues {
		if v == 0 {
			continue
		}
		row, _ := b.rows.Row(i, 0)
		rowThirds := b.shapes.ThirdDerivatives[row]
		for q := range out {
			tensor.AddScaledT3(&out[q], v, rowThirds[q], b.spacedim)
		}
	}
}

// Vector-valued flavors. out is [point][component], or the transpose with
// pointsFastest.

func (b *valuesBase) GetFunctionVectorValues(src VectorSource, out [][]float64) {
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionVectorValues(b.scratchVals, out, false)
}

func (b *valuesBase) GetFunctionVectorValuesIndexed(src VectorSource, indices utils.Index,
	out [][]float64, pointsFastest bool) {
	b.indexedMultiple(indices, "GetFunctionVectorValuesIndexed")
	b.doFunctionVectorValues(b.gatherBlocks(src, indices), out, pointsFastest)
}

func (b *valuesBase) checkComponentOutput(nBlockValues, nOuter int, inner func(int) int,
	pointsFastest bool, what string) (mult int) {
	mult = nBlockValues / b.dofsPerCell
	var wantOuter, wantInner int
	if pointsFastest {
		wantOuter, wantInner = mult*b.element.NComponents(), b.nQuadPoints
	} else {
		wantOuter, wantInner = b.nQuadPoints, mult*b.element.NComponents()
	}
	if nOuter != wantOuter {
		panic(fmt.Sprintf("fe: %s output has %d rows, want %d", what, nOuter, wantOuter))
	}
	for i := 0; i < nOuter; i++ {
		if inner(i) != wantInner {
			panic(fmt.Sprintf("fe: %s output row %d has length %d, want %d",
				what, i, inner(i), wantInner))
		}
	}
	return
}

func (b *valuesBase) doFunctionVectorValues(dofValues []float64, out [][]float64,
	pointsFastest bool) {
	b.require(UpdateValues, "function values")
	var (
		nComp = b.element.NComponents()
		mult  = b.checkComponentOutput(len(dofValues), len(out),
			func(i int) int { return len(out[i]) }, pointsFastest, "GetFunctionVectorValues")
		add func(q, comp int, x float64)
	)
	for i := range out {
		for j := range out[i] {
			out[i][j] = 0
		}
	}
	if pointsFastest {
		add = func(q, comp int, x float64) { out[comp][q] += x }
	} else {
		add = func(q, comp int, x float64) { out[q][comp] += x }
	}
	for mc := 0; mc < mult; mc++ {
		for i := 0; i < b.dofsPerCell; i++ {
			v := dofValues[mc*b.dofsPerCell+i]
			if v == 0 {
				continue
			}
			if b.element.IsPrimitive() || b.element.IsShapePrimitive(i) {
				var (
					comp   = b.element.SystemToComponent(i)
					row, _ = b.rows.Row(i, comp)
					rowV   = b.shapes.Values[row]
				)
				for q := 0; q < b.nQuadPoints; q++ {
					add(q, mc*nComp+comp, v*rowV[q])
				}
				continue
			}
			for comp, nz := range b.element.NonzeroComponents(i) {
				if !nz {
					continue
				}
				row, _ := b.rows.Row(i, comp)
				rowV := b.shapes.Values[row]
				for q := 0; q < b.nQuadPoints; q++ {
					add(q, mc*nComp+comp, v*rowV[q])
				}
			}
		}
	}
}

func (b *valuesBase) GetFunctionVectorGradients(src VectorSource, out [][]tensor.T1F) {
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionVectorGradients(b.scratchVals, out, false)
}

func (b *valuesBase) GetFunctionVectorGradientsIndexed(src VectorSource, indices utils.Index,
	out [][]tensor.T1F, pointsFastest bool) {
	b.indexedMultiple(indices, "GetFunctionVectorGradientsIndexed")
	b.doFunctionVectorGradients(b.gatherBlocks(src, indices), out, pointsFastest)
}

func (b *valuesBase) doFunctionVectorGradients(dofValues []float64, out [][]tensor.T1F,
	pointsFastest bool) {
	b.require(UpdateGradients, "function gradients")
	var (
		nComp = b.element.NComponents()
		mult  = b.checkComponentOutput(len(dofValues), len(out),
			func(i int) int { return len(out[i]) }, pointsFastest, "GetFunctionVectorGradients")
		at func(q, comp int) *tensor.T1F
	)
	for i := range out {
		for j := range out[i] {
			out[i][j] = tensor.T1F{}
		}
	}
	if pointsFastest {
		at = func(q, comp int) *tensor.T1F { return &out[comp][q] }
	} else {
		at = func(q, comp int) *tensor.T1F { return &out[q][comp] }
	}
	for mc := 0; mc < mult; mc++ {
		for i := 0; i < b.dofsPerCell; i++ {
			v := dofValues[mc*b.dofsPerCell+i]
			if v == 0 {
				continue
			}
			if b.element.IsPrimitive() || b.element.IsShapePrimitive(i) {
				var (
					comp   = b.element.SystemToComponent(i)
					row, _ = b.rows.Row(i, comp)
					rowG   = b.shapes.Gradients[row]
				)
				for q := 0; q < b.nQuadPoints; q++ {
					tensor.AddScaledT1(at(q, mc*nComp+comp), v, rowG[q], b.spacedim)
				}
				continue
			}
			for comp, nz := range b.element.NonzeroComponents(i) {
				if !nz {
					continue
				}
				row, _ := b.rows.Row(i, comp)
				rowG := b.shapes.Gradients[row]
				for q := 0; q < b.nQuadPoints; q++ {
					tensor.AddScaledT1(at(q, mc*nComp+comp), v, rowG[q], b.spacedim)
				}
			}
		}
	}
}

func (b *valuesBase) GetFunctionVectorLaplacians(src VectorSource, out [][]float64) {
	b.gatherDofValues(src, b.scratchVals)
	b.doFunctionVectorLaplacians(b.scratchVals, out, false)
}

func (b *valuesBase) GetFunctionVectorLaplaciansIndexed(src VectorSource, indices utils.Index,
	out [][]float64, pointsFastest bool) {
	b.indexedMultiple(indices, "GetFunctionVectorLaplaciansIndexed")
	b.doFunctionVectorLaplacians(b.gatherBlocks(src, indices), out, pointsFastest)
}

func (b *valuesBase) doFunctionVectorLaplacians(dofValues []float64, out [][]float64,
	pointsFastest bool) {
	b.require(UpdateHessians, "function laplacians")
	var (
		nComp = b.element.NComponents()
		mult  = b.checkComponentOutput(len(dofValues), len(out),
			func(i int) int { return len(out[i]) }, pointsFastest, "GetFunctionVectorLaplacians")
		add func(q, comp int, x float64)
	)
	for i := range out {
		for j := range out[i] {
			out[i][j] = 0
		}
	}
	if pointsFastest {
		add = func(q, comp int, x float64) { out[comp][q] += x }
	} else {
		add = func(q, comp int, x float64) { out[q][comp] += x }
	}
	for mc := 0; mc < mult; mc++ {
		for i := 0; i < b.dofsPerCell; i++ {
			v := dofValues[mc*b.dofsPerCell+i]
			if v == 0 {
				continue
			}
			if b.element.IsPrimitive() || b.element.IsShapePrimitive(i) {
				var (
					comp   = b.element.SystemToComponent(i)
					row, _ = b.rows.Row(i, comp)
					rowH   = b.shapes.Hessians[row]
				)
				for q := 0; q < b.nQuadPoints; q++ {
					add(q, mc*nComp+comp, v*tensor.Trace(rowH[q], b.spacedim))
				}
				continue
			}
			for comp, nz := range b.element.NonzeroComponents(i) {
				if !nz {
					continue
				}
				row, _ := b.rows.Row(i, comp)
				rowH := b.shapes.Hessians[row]
				for q := 0; q < b.nQuadPoints; q++ {
					add(q, mc*nComp+comp, v*tensor.Trace(rowH[q], b.spacedim))
				}
			}
		}
	}
}
