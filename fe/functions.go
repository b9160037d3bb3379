package fe

import (
	"fmt"

	"github.com/nodalfe/gofeval/tensor"
)

// The exported accessors come in two layers. The generic functions take a
// local coefficient slice of any supported scalar type (float64 or a dual
// number) and run the matching kernel; they are free functions because the
// coefficient type parameterizes the output tensors. The view methods are
// the float64 convenience layer: they gather local coefficients from a
// global source through the attached DofMap and delegate.

func checkKernelSizes(b *valuesBase, nDofs, nOut int, what string) {
	if nDofs != b.dofsPerCell {
		panic(fmt.Sprintf("fe: %s got %d coefficients for a %d-dof element",
			what, nDofs, b.dofsPerCell))
	}
	if nOut != b.nQuadPoints {
		panic(fmt.Sprintf("fe: %s output has length %d, want one entry per quadrature point (%d)",
			what, nOut, b.nQuadPoints))
	}
}

// Scalar view accessors.

func ScalarValues[S tensor.Scalar](v *ScalarView, dofValues []S, out []S) {
	v.fv.require(UpdateValues, "function values")
	checkKernelSizes(v.fv, len(dofValues), len(out), "ScalarValues")
	scalarValues(dofValues, v.fv.shapes.Values, v.shapeData, out)
}

func ScalarGradients[S tensor.Scalar](v *ScalarView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateGradients, "function gradients")
	checkKernelSizes(v.fv, len(dofValues), len(out), "ScalarGradients")
	scalarGradients(dofValues, v.fv.shapes.Gradients, v.shapeData, v.fv.spacedim, out)
}

func ScalarHessians[S tensor.Scalar](v *ScalarView, dofValues []S, out []tensor.T2[S]) {
	v.fv.require(UpdateHessians, "function hessians")
	checkKernelSizes(v.fv, len(dofValues), len(out), "ScalarHessians")
	scalarHessians(dofValues, v.fv.shapes.Hessians, v.shapeData, v.fv.spacedim, out)
}

func ScalarLaplacians[S tensor.Scalar](v *ScalarView, dofValues []S, out []S) {
	v.fv.require(UpdateHessians, "function laplacians")
	checkKernelSizes(v.fv, len(dofValues), len(out), "ScalarLaplacians")
	scalarLaplacians(dofValues, v.fv.shapes.Hessians, v.shapeData, v.fv.spacedim, out)
}

func ScalarThirdDerivatives[S tensor.Scalar](v *ScalarView, dofValues []S, out []tensor.T3[S]) {
	v.fv.require(Update3rdDerivatives, "function third derivatives")
	checkKernelSizes(v.fv, len(dofValues), len(out), "ScalarThirdDerivatives")
	scalarThirdDerivatives(dofValues, v.fv.shapes.ThirdDerivatives, v.shapeData, v.fv.spacedim, out)
}

// Vector view accessors.

func VectorValues[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateValues, "function values")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorValues")
	vectorValues(dofValues, v.fv.shapes.Values, v.shapeData, v.nSub, out)
}

func VectorGradients[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T2[S]) {
	v.fv.require(UpdateGradients, "function gradients")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorGradients")
	vectorGradients(dofValues, v.fv.shapes.Gradients, v.shapeData, v.nSub, v.fv.spacedim, out)
}

func VectorSymmetricGradients[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.Sym2[S]) {
	v.fv.require(UpdateGradients, "function symmetric gradients")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorSymmetricGradients")
	vectorSymmetricGradients(dofValues, v.fv.shapes.Gradients, v.shapeData, v.nSub, v.fv.spacedim, out)
}

func VectorDivergences[S tensor.Scalar](v *VectorView, dofValues []S, out []S) {
	v.fv.require(UpdateGradients, "function divergences")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorDivergences")
	vectorDivergences(dofValues, v.fv.shapes.Gradients, v.shapeData, v.nSub, out)
}

func VectorCurls[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateGradients, "function curls")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorCurls")
	vectorCurls(dofValues, v.fv.shapes.Gradients, v.shapeData, v.nSub, v.fv.spacedim, out)
}

func VectorHessians[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T3[S]) {
	v.fv.require(UpdateHessians, "function hessians")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorHessians")
	vectorHessians(dofValues, v.fv.shapes.Hessians, v.shapeData, v.nSub, v.fv.spacedim, out)
}

func VectorLaplacians[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateHessians, "function laplacians")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorLaplacians")
	vectorLaplacians(dofValues, v.fv.shapes.Hessians, v.shapeData, v.nSub, v.fv.spacedim, out)
}

func VectorThirdDerivatives[S tensor.Scalar](v *VectorView, dofValues []S, out []tensor.T4[S]) {
	v.fv.require(Update3rdDerivatives, "function third derivatives")
	checkKernelSizes(v.fv, len(dofValues), len(out), "VectorThirdDerivatives")
	vectorThirdDerivatives(dofValues, v.fv.shapes.ThirdDerivatives, v.shapeData, v.nSub, v.fv.spacedim, out)
}

// Symmetric tensor view accessors.

func SymTensorValues[S tensor.Scalar](v *SymTensorView, dofValues []S, out []tensor.Sym2[S]) {
	v.fv.require(UpdateValues, "function values")
	checkKernelSizes(v.fv, len(dofValues), len(out), "SymTensorValues")
	symTensorValues(dofValues, v.fv.shapes.Values, v.shapeData, v.nSub, out)
}

func SymTensorDivergences[S tensor.Scalar](v *SymTensorView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateGradients, "function divergences")
	checkKernelSizes(v.fv, len(dofValues), len(out), "SymTensorDivergences")
	symTensorDivergences(dofValues, v.fv.shapes.Gradients, v.shapeData, v.fv.spacedim, out)
}

// Tensor view accessors.

func TensorValues[S tensor.Scalar](v *TensorView, dofValues []S, out []tensor.T2[S]) {
	v.fv.require(UpdateValues, "function values")
	checkKernelSizes(v.fv, len(dofValues), len(out), "TensorValues")
	tensorValues(dofValues, v.fv.shapes.Values, v.shapeData, v.nSub, v.fv.dim, out)
}

func TensorDivergences[S tensor.Scalar](v *TensorView, dofValues []S, out []tensor.T1[S]) {
	v.fv.require(UpdateGradients, "function divergences")
	checkKernelSizes(v.fv, len(dofValues), len(out), "TensorDivergences")
	tensorDivergences(dofValues, v.fv.shapes.Gradients, v.shapeData, v.fv.dim, out)
}

func TensorGradients[S tensor.Scalar](v *TensorView, dofValues []S, out []tensor.T3[S]) {
	v.fv.require(UpdateGradients, "function gradients")
	checkKernelSizes(v.fv, len(dofValues), len(out), "TensorGradients")
	tensorGradients(dofValues, v.fv.shapes.Gradients, v.shapeData, v.fv.dim, out)
}

// float64 convenience layer: gather from a global source, then evaluate.

func (v *ScalarView) GetFunctionValues(src VectorSource, out []float64) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	ScalarValues(v, v.fv.scratchVals, out)
}

func (v *ScalarView) GetFunctionValuesFromLocalDofValues(dofValues, out []float64) {
	ScalarValues(v, dofValues, out)
}

func (v *ScalarView) GetFunctionGradients(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	ScalarGradients(v, v.fv.scratchVals, out)
}

func (v *ScalarView) GetFunctionGradientsFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	ScalarGradients(v, dofValues, out)
}

func (v *ScalarView) GetFunctionHessians(src VectorSource, out []tensor.T2F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	ScalarHessians(v, v.fv.scratchVals, out)
}

func (v *ScalarView) GetFunctionHessiansFromLocalDofValues(dofValues []float64, out []tensor.T2F) {
	ScalarHessians(v, dofValues, out)
}

func (v *ScalarView) GetFunctionLaplacians(src VectorSource, out []float64) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	ScalarLaplacians(v, v.fv.scratchVals, out)
}

func (v *ScalarView) GetFunctionLaplaciansFromLocalDofValues(dofValues, out []float64) {
	ScalarLaplacians(v, dofValues, out)
}

func (v *ScalarView) GetFunctionThirdDerivatives(src VectorSource, out []tensor.T3F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	ScalarThirdDerivatives(v, v.fv.scratchVals, out)
}

func (v *ScalarView) GetFunctionThirdDerivativesFromLocalDofValues(dofValues []float64, out []tensor.T3F) {
	ScalarThirdDerivatives(v, dofValues, out)
}

func (v *VectorView) GetFunctionValues(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorValues(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionValuesFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	VectorValues(v, dofValues, out)
}

func (v *VectorView) GetFunctionGradients(src VectorSource, out []tensor.T2F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorGradients(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionGradientsFromLocalDofValues(dofValues []float64, out []tensor.T2F) {
	VectorGradients(v, dofValues, out)
}

func (v *VectorView) GetFunctionSymmetricGradients(src VectorSource, out []tensor.Sym2F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorSymmetricGradients(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionSymmetricGradientsFromLocalDofValues(dofValues []float64, out []tensor.Sym2F) {
	VectorSymmetricGradients(v, dofValues, out)
}

func (v *VectorView) GetFunctionDivergences(src VectorSource, out []float64) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorDivergences(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionDivergencesFromLocalDofValues(dofValues, out []float64) {
	VectorDivergences(v, dofValues, out)
}

func (v *VectorView) GetFunctionCurls(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorCurls(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionCurlsFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	VectorCurls(v, dofValues, out)
}

func (v *VectorView) GetFunctionHessians(src VectorSource, out []tensor.T3F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorHessians(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionHessiansFromLocalDofValues(dofValues []float64, out []tensor.T3F) {
	VectorHessians(v, dofValues, out)
}

func (v *VectorView) GetFunctionLaplacians(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorLaplacians(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionLaplaciansFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	VectorLaplacians(v, dofValues, out)
}

func (v *VectorView) GetFunctionThirdDerivatives(src VectorSource, out []tensor.T4F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	VectorThirdDerivatives(v, v.fv.scratchVals, out)
}

func (v *VectorView) GetFunctionThirdDerivativesFromLocalDofValues(dofValues []float64, out []tensor.T4F) {
	VectorThirdDerivatives(v, dofValues, out)
}

func (v *SymTensorView) GetFunctionValues(src VectorSource, out []tensor.Sym2F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	SymTensorValues(v, v.fv.scratchVals, out)
}

func (v *SymTensorView) GetFunctionValuesFromLocalDofValues(dofValues []float64, out []tensor.Sym2F) {
	SymTensorValues(v, dofValues, out)
}

func (v *SymTensorView) GetFunctionDivergences(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	SymTensorDivergences(v, v.fv.scratchVals, out)
}

func (v *SymTensorView) GetFunctionDivergencesFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	SymTensorDivergences(v, dofValues, out)
}

func (v *TensorView) GetFunctionValues(src VectorSource, out []tensor.T2F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	TensorValues(v, v.fv.scratchVals, out)
}

func (v *TensorView) GetFunctionValuesFromLocalDofValues(dofValues []float64, out []tensor.T2F) {
	TensorValues(v, dofValues, out)
}

func (v *TensorView) GetFunctionDivergences(src VectorSource, out []tensor.T1F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	TensorDivergences(v, v.fv.scratchVals, out)
}

func (v *TensorView) GetFunctionDivergencesFromLocalDofValues(dofValues []float64, out []tensor.T1F) {
	TensorDivergences(v, dofValues, out)
}

func (v *TensorView) GetFunctionGradients(src VectorSource, out []tensor.T3F) {
	v.fv.gatherDofValues(src, v.fv.scratchVals)
	TensorGradients(v, v.fv.scratchVals, out)
}

func (v *TensorView) GetFunctionGradientsFromLocalDofValues(dofValues []float64, out []tensor.T3F) {
	TensorGradients(v, dofValues, out)
}
