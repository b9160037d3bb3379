package fe

import (
	"fmt"
	"sync"

	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
	"github.com/nodalfe/gofeval/utils"
)

// valuesBase carries the state shared by cell, face and subface contexts:
// the collaborator pair, the update flags, the dense geometric and shape
// tables, the view cache and the present-cell binding.
type valuesBase struct {
	dim, spacedim int

	mapping Mapping
	element FiniteElement
	flags   UpdateFlags

	rows        *RowTable
	dofsPerCell int
	nQuadPoints int

	mappingData MappingData
	elementData ElementData

	geom   *MappingTables
	shapes *ShapeTables
	views  *viewCache

	tria            *mesh.Triangulation
	presentCell     mesh.Cell
	cellBound       bool
	similarity      CellSimilarity
	nextCellInvalid bool
	conns           []mesh.Connection

	dofMap      DofMap
	scratchDofs utils.Index
	scratchVals []float64
}

// FEValues evaluates on full cells with one fixed quadrature rule.
type FEValues struct {
	valuesBase
	quadrature Quadrature
}

// computeUpdateFlags closes the requested flags over both collaborators.
// The element goes first: producing physical-space shape gradients may add
// a need for inverse Jacobians, which the mapping then claims.
func computeUpdateFlags(m Mapping, el FiniteElement, flags UpdateFlags) UpdateFlags {
	flags |= el.RequiresUpdateFlags(flags)
	flags |= m.RequiresUpdateFlags(flags)
	return flags
}

func (b *valuesBase) initBase(m Mapping, el FiniteElement, flags UpdateFlags, nq int) {
	b.dim, b.spacedim = m.Dims()
	b.mapping = m
	b.element = el
	b.flags = computeUpdateFlags(m, el, flags)
	b.rows = BuildRowTable(el)
	b.dofsPerCell = el.NDofsPerCell()
	b.nQuadPoints = nq
	b.geom = newMappingTables(nq, b.flags)
	b.shapes = newShapeTables(b.rows.NRows(), nq, b.flags)
	b.scratchVals = make([]float64, b.dofsPerCell)
}

// NewFEValues builds an evaluation context for the (mapping, element,
// quadrature) triple. The two collaborators' internal data setups are
// independent and run concurrently; everything after the join is
// sequential.
func NewFEValues(m Mapping, el FiniteElement, q Quadrature, flags UpdateFlags) *FEValues {
	fv := &FEValues{quadrature: q}
	b := &fv.valuesBase
	b.initBase(m, el, flags, q.Len())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.mappingData = m.GetData(b.flags, q)
	}()
	go func() {
		defer wg.Done()
		b.elementData = el.GetData(b.flags, m, q)
	}()
	wg.Wait()

	b.views = newViewCache(b)
	return fv
}

// maybeInvalidatePreviousPresentCell manages the mesh subscriptions when a
// cell of a different (or the first) triangulation is about to be bound.
// Both signals force a "present cell invalid" condition, so any use of the
// context after a mesh change and before a fresh Reinit panics.
func (b *valuesBase) maybeInvalidatePreviousPresentCell(c mesh.Cell) {
	tria := c.Tria()
	if b.tria == tria {
		return
	}
	b.disconnectMesh()
	b.tria = tria
	b.cellBound = false
	b.conns = []mesh.Connection{
		tria.OnTopologyChange(b.meshChanged),
		tria.OnMeshMovement(b.meshChanged),
	}
}

func (b *valuesBase) meshChanged() {
	b.cellBound = false
	b.nextCellInvalid = true
}

func (b *valuesBase) disconnectMesh() {
	for _, c := range b.conns {
		c.Disconnect()
	}
	b.conns = nil
}

// checkCellSimilarity classifies c against the previous present cell.
// Detection is order-sensitive, so it is off whenever more than one worker
// is configured; see SetMaxWorkers.
func (b *valuesBase) checkCellSimilarity(c mesh.Cell) CellSimilarity {
	switch {
	case MaxWorkers() > 1:
		return SimilarityNone
	case !b.cellBound || b.nextCellInvalid:
		b.nextCellInvalid = false
		return SimilarityNone
	case b.similarity == SimilarityInvalidNextCell:
		return SimilarityNone
	}
	if !c.IsTranslationOf(b.presentCell) {
		return SimilarityNone
	}
	if b.dim < b.spacedim && c.DirectionFlag() != b.presentCell.DirectionFlag() {
		// surface orientation flipped between the two translates
		return SimilarityInvertedTranslation
	}
	return SimilarityTranslation
}

// Reinit binds the context to a new cell: it classifies similarity against
// the previous cell, has the mapping refill the geometric tables (reusing
// what the similarity allows), then has the element refill the shape
// tables from the fresh geometry.
func (fv *FEValues) Reinit(c mesh.Cell) {
	b := &fv.valuesBase
	if !b.mapping.IsCompatibleWith(c.Type()) {
		panic(fmt.Sprintf("fe: mapping is not compatible with %v cells", c.Type()))
	}
	b.maybeInvalidatePreviousPresentCell(c)
	sim := b.checkCellSimilarity(c)
	b.presentCell = c
	b.cellBound = true
	b.similarity = b.mapping.FillCellValues(c, sim, fv.quadrature, b.mappingData, b.geom)
	b.element.FillCellValues(c, b.similarity, fv.quadrature,
		b.mapping, b.mappingData, b.geom, b.elementData, b.rows, b.shapes)
}

// Invalidate drops the present-cell binding and the mesh subscriptions.
// The context stays usable; the next Reinit starts from scratch.
func (b *valuesBase) Invalidate() {
	b.disconnectMesh()
	b.tria = nil
	b.cellBound = false
	b.nextCellInvalid = false
	b.similarity = SimilarityNone
}

// Close releases the context's mesh subscriptions. Call it when done with
// the context; using it afterwards requires a fresh Reinit.
func (b *valuesBase) Close() {
	b.Invalidate()
}

// SetDofMap attaches the local-to-global numbering used by the accessors
// that read a global coefficient source.
func (b *valuesBase) SetDofMap(dm DofMap) {
	b.dofMap = dm
}

func (b *valuesBase) requireBound(what string) {
	if !b.cellBound {
		panic("fe: " + what + " requested before Reinit bound a cell")
	}
}

func (b *valuesBase) require(bits UpdateFlags, what string) {
	b.requireBound(what)
	if !b.flags.Has(bits) {
		panic(fmt.Sprintf("fe: %s requires update flag %v; context has %v",
			what, bits, b.flags))
	}
}

// Accessor surface. Per-quadrature-point getters panic when the matching
// update flag was not requested at construction or no cell is bound.

func (b *valuesBase) NQuadPoints() int          { return b.nQuadPoints }
func (b *valuesBase) DofsPerCell() int          { return b.dofsPerCell }
func (b *valuesBase) Dims() (dim, spacedim int) { return b.dim, b.spacedim }
func (b *valuesBase) Element() FiniteElement    { return b.element }
func (b *valuesBase) Mapping() Mapping          { return b.mapping }
func (b *valuesBase) UpdateFlags() UpdateFlags  { return b.flags }
func (b *valuesBase) RowMapping() *RowTable     { return b.rows }

func (b *valuesBase) Cell() mesh.Cell {
	b.requireBound("Cell")
	return b.presentCell
}

func (b *valuesBase) CellSimilarity() CellSimilarity {
	return b.similarity
}

func (b *valuesBase) JxW(q int) float64 {
	b.require(UpdateJxW, "JxW")
	return b.geom.JxW[q]
}

func (b *valuesBase) JxWValues() []float64 {
	b.require(UpdateJxW, "JxWValues")
	return b.geom.JxW[:b.nQuadPoints]
}

func (b *valuesBase) QuadraturePoint(q int) tensor.T1F {
	b.require(UpdateQuadraturePoints, "QuadraturePoint")
	return b.geom.QPoints[q]
}

func (b *valuesBase) QuadraturePoints() []tensor.T1F {
	b.require(UpdateQuadraturePoints, "QuadraturePoints")
	return b.geom.QPoints[:b.nQuadPoints]
}

func (b *valuesBase) Jacobian(q int) tensor.T2F {
	b.require(UpdateJacobians, "Jacobian")
	return b.geom.Jacobians[q]
}

func (b *valuesBase) InverseJacobian(q int) tensor.T2F {
	b.require(UpdateInverseJacobians, "InverseJacobian")
	return b.geom.InverseJacobians[q]
}

func (b *valuesBase) NormalVector(q int) tensor.T1F {
	b.require(UpdateNormalVectors, "NormalVector")
	return b.geom.Normals[q]
}

func (b *valuesBase) NormalVectors() []tensor.T1F {
	b.require(UpdateNormalVectors, "NormalVectors")
	return b.geom.Normals[:b.nQuadPoints]
}

func (b *valuesBase) BoundaryForm(q int) tensor.T1F {
	b.require(UpdateBoundaryForms, "BoundaryForm")
	return b.geom.BoundaryForms[q]
}

// Shape function accessors. The plain variants require a primitive shape
// function; the Component variants work for any element and return zero
// for structurally zero (shape function, component) pairs.

func (b *valuesBase) ShapeValue(i, q int) float64 {
	b.require(UpdateValues, "ShapeValue")
	return b.shapes.Values[b.primitiveRow(i)][q]
}

func (b *valuesBase) ShapeValueComponent(i, q, component int) float64 {
	b.require(UpdateValues, "ShapeValueComponent")
	row, ok := b.rows.Row(i, component)
	if !ok {
		return 0
	}
	return b.shapes.Values[row][q]
}

func (b *valuesBase) ShapeGrad(i, q int) tensor.T1F {
	b.require(UpdateGradients, "ShapeGrad")
	return b.shapes.Gradients[b.primitiveRow(i)][q]
}

func (b *valuesBase) ShapeGradComponent(i, q, component int) tensor.T1F {
	b.require(UpdateGradients, "ShapeGradComponent")
	row, ok := b.rows.Row(i, component)
	if !ok {
		return tensor.T1F{}
	}
	return b.shapes.Gradients[row][q]
}

func (b *valuesBase) ShapeHessian(i, q int) tensor.T2F {
	b.require(UpdateHessians, "ShapeHessian")
	return b.shapes.Hessians[b.primitiveRow(i)][q]
}

func (b *valuesBase) ShapeHessianComponent(i, q, component int) tensor.T2F {
	b.require(UpdateHessians, "ShapeHessianComponent")
	row, ok := b.rows.Row(i, component)
	if !ok {
		return tensor.T2F{}
	}
	return b.shapes.Hessians[row][q]
}

func (b *valuesBase) Shape3rdDerivative(i, q int) tensor.T3F {
	b.require(Update3rdDerivatives, "Shape3rdDerivative")
	return b.shapes.ThirdDerivatives[b.primitiveRow(i)][q]
}

func (b *valuesBase) Shape3rdDerivativeComponent(i, q, component int) tensor.T3F {
	b.require(Update3rdDerivatives, "Shape3rdDerivativeComponent")
	row, ok := b.rows.Row(i, component)
	if !ok {
		return tensor.T3F{}
	}
	return b.shapes.ThirdDerivatives[row][q]
}

func (b *valuesBase) primitiveRow(i int) int {
	if !(b.element.IsPrimitive() || b.element.IsShapePrimitive(i)) {
		panic(fmt.Sprintf("fe: shape function %d is nonzero in several components; "+
			"use the Component accessor or a view", i))
	}
	row, _ := b.rows.Row(i, b.element.SystemToComponent(i))
	return row
}

// View getters return cached descriptors; repeated calls with the same
// offset are index lookups.

func (b *valuesBase) Scalar(component int) *ScalarView {
	if component < 0 || component >= len(b.views.scalars) {
		panic(fmt.Sprintf("fe: no scalar view for component %d of a %d-component element",
			component, b.element.NComponents()))
	}
	return &b.views.scalars[component]
}

func (b *valuesBase) Vector(firstComponent int) *VectorView {
	if firstComponent < 0 || firstComponent >= len(b.views.vectors) {
		panic(fmt.Sprintf("fe: no vector view starting at component %d of a %d-component element",
			firstComponent, b.element.NComponents()))
	}
	return &b.views.vectors[firstComponent]
}

func (b *valuesBase) SymmetricTensor(firstComponent int) *SymTensorView {
	if firstComponent < 0 || firstComponent >= len(b.views.symTensors) {
		panic(fmt.Sprintf("fe: no symmetric tensor view starting at component %d of a %d-component element",
			firstComponent, b.element.NComponents()))
	}
	return &b.views.symTensors[firstComponent]
}

func (b *valuesBase) Tensor(firstComponent int) *TensorView {
	if firstComponent < 0 || firstComponent >= len(b.views.tensors) {
		panic(fmt.Sprintf("fe: no tensor view starting at component %d of a %d-component element",
			firstComponent, b.element.NComponents()))
	}
	return &b.views.tensors[firstComponent]
}

func (fv *FEValues) Quadrature() Quadrature {
	return fv.quadrature
}
