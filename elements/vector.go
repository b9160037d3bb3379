package elements

import (
	"fmt"

	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
)

// VectorElement stacks n copies of a single-component base element into an
// n-component system in block ordering: shape function i belongs to
// component i / nBase and is base shape i % nBase of that copy. Every
// shape function is nonzero in exactly one component, so the element is
// primitive regardless of the base.
type VectorElement struct {
	base     fe.FiniteElement
	baseRows *fe.RowTable
	nBase    int
	nCopies  int
	masks    [][]bool
}

func NewVectorElement(base fe.FiniteElement, nCopies int) *VectorElement {
	if base.NComponents() != 1 {
		panic(fmt.Sprintf("elements: VectorElement needs a single-component base, got %d components",
			base.NComponents()))
	}
	if nCopies < 1 {
		panic("elements: VectorElement needs at least one copy")
	}
	el := &VectorElement{
		base:     base,
		baseRows: fe.BuildRowTable(base),
		nBase:    base.NDofsPerCell(),
		nCopies:  nCopies,
	}
	el.masks = make([][]bool, nCopies)
	for c := range el.masks {
		mask := make([]bool, nCopies)
		mask[c] = true
		el.masks[c] = mask
	}
	return el
}

func (el *VectorElement) NDofsPerCell() int { return el.nBase * el.nCopies }
func (el *VectorElement) NComponents() int  { return el.nCopies }

func (el *VectorElement) IsPrimitive() bool           { return true }
func (el *VectorElement) IsShapePrimitive(i int) bool { return true }

func (el *VectorElement) NonzeroComponents(i int) []bool { return el.masks[i/el.nBase] }
func (el *VectorElement) NNonzeroComponents(i int) int   { return 1 }
func (el *VectorElement) SystemToComponent(i int) int    { return i / el.nBase }

func (el *VectorElement) RequiresUpdateFlags(flags fe.UpdateFlags) fe.UpdateFlags {
	return el.base.RequiresUpdateFlags(flags)
}

// vecElementData wraps the base element's data with a base-sized scratch
// table; fills run the base once and replicate its rows across the copies.
type vecElementData struct {
	flags    fe.UpdateFlags
	baseData fe.ElementData
	scratch  *fe.ShapeTables
}

func (el *VectorElement) newData(flags fe.UpdateFlags, baseData fe.ElementData, nq int) *vecElementData {
	d := &vecElementData{flags: flags, baseData: baseData, scratch: &fe.ShapeTables{}}
	if flags.Has(fe.UpdateValues) {
		d.scratch.Values = make([][]float64, el.nBase)
		for r := range d.scratch.Values {
			d.scratch.Values[r] = make([]float64, nq)
		}
	}
	if flags.Has(fe.UpdateGradients) {
		d.scratch.Gradients = make([][]tensor.T1F, el.nBase)
		for r := range d.scratch.Gradients {
			d.scratch.Gradients[r] = make([]tensor.T1F, nq)
		}
	}
	if flags.Has(fe.UpdateHessians) {
		d.scratch.Hessians = make([][]tensor.T2F, el.nBase)
		for r := range d.scratch.Hessians {
			d.scratch.Hessians[r] = make([]tensor.T2F, nq)
		}
	}
	if flags.Has(fe.Update3rdDerivatives) {
		d.scratch.ThirdDerivatives = make([][]tensor.T3F, el.nBase)
		for r := range d.scratch.ThirdDerivatives {
			d.scratch.ThirdDerivatives[r] = make([]tensor.T3F, nq)
		}
	}
	return d
}

func (el *VectorElement) GetData(flags fe.UpdateFlags, m fe.Mapping, q fe.Quadrature) fe.ElementData {
	return el.newData(flags, el.base.GetData(flags, m, q), q.Len())
}

func (el *VectorElement) GetFaceData(flags fe.UpdateFlags, m fe.Mapping, q []fe.Quadrature) fe.ElementData {
	nq := maxQuadLen(q)
	return el.newData(flags, el.base.GetFaceData(flags, m, q), nq)
}

func (el *VectorElement) GetSubfaceData(flags fe.UpdateFlags, m fe.Mapping, q fe.Quadrature) fe.ElementData {
	return el.newData(flags, el.base.GetSubfaceData(flags, m, q), q.Len())
}

// replicate copies the base scratch rows into every copy's block of the
// output table. Block ordering makes row c*nBase+r exactly base row r.
func (el *VectorElement) replicate(d *vecElementData, out *fe.ShapeTables) {
	for c := 0; c < el.nCopies; c++ {
		off := c * el.nBase
		for r := 0; r < el.nBase; r++ {
			if d.flags.Has(fe.UpdateValues) {
				copy(out.Values[off+r], d.scratch.Values[r])
			}
			if d.flags.Has(fe.UpdateGradients) {
				copy(out.Gradients[off+r], d.scratch.Gradients[r])
			}
			if d.flags.Has(fe.UpdateHessians) {
				copy(out.Hessians[off+r], d.scratch.Hessians[r])
			}
			if d.flags.Has(fe.Update3rdDerivatives) {
				copy(out.ThirdDerivatives[off+r], d.scratch.ThirdDerivatives[r])
			}
		}
	}
}

func (el *VectorElement) FillCellValues(c mesh.Cell, sim fe.CellSimilarity, q fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*vecElementData)
	if sim == fe.SimilarityTranslation || sim == fe.SimilarityInvertedTranslation {
		return
	}
	el.base.FillCellValues(c, fe.SimilarityNone, q, m, mdata, geom, d.baseData, el.baseRows, d.scratch)
	el.replicate(d, out)
}

func (el *VectorElement) FillFaceValues(c mesh.Cell, face int, q []fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*vecElementData)
	el.base.FillFaceValues(c, face, q, m, mdata, geom, d.baseData, el.baseRows, d.scratch)
	el.replicate(d, out)
}

func (el *VectorElement) FillSubfaceValues(c mesh.Cell, face, subface int, q fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*vecElementData)
	el.base.FillSubfaceValues(c, face, subface, q, m, mdata, geom, d.baseData, el.baseRows, d.scratch)
	el.replicate(d, out)
}
