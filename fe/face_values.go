package fe

import (
	"fmt"
	"sync"

	"github.com/nodalfe/gofeval/mesh"
)

// FEFaceValues evaluates on one face of a cell at a time. It takes a
// quadrature collection of length one (the same rule on every face) or one
// rule per face, so faces of a cell may carry heterogeneous point counts;
// NQuadPoints reports the count of the face currently bound.
type FEFaceValues struct {
	valuesBase
	quadratures []Quadrature
	presentFace int
}

func maxQuadLen(q []Quadrature) int {
	var n int
	for _, rule := range q {
		if rule.Len() > n {
			n = rule.Len()
		}
	}
	return n
}

func NewFEFaceValues(m Mapping, el FiniteElement, q []Quadrature, flags UpdateFlags) *FEFaceValues {
	if len(q) == 0 {
		panic("fe: face quadrature collection is empty")
	}
	fv := &FEFaceValues{quadratures: q, presentFace: -1}
	b := &fv.valuesBase
	b.initBase(m, el, flags, maxQuadLen(q))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.mappingData = m.GetFaceData(b.flags, q)
	}()
	go func() {
		defer wg.Done()
		b.elementData = el.GetFaceData(b.flags, m, q)
	}()
	wg.Wait()

	b.views = newViewCache(b)
	return fv
}

func (fv *FEFaceValues) faceQuadrature(face int) Quadrature {
	if len(fv.quadratures) == 1 {
		return fv.quadratures[0]
	}
	return fv.quadratures[face]
}

// Reinit binds the context to face `face` of cell c. Face evaluation never
// reuses geometric data between bindings; faces of neighboring cells
// rarely relate by pure translation in a way worth detecting.
func (fv *FEFaceValues) Reinit(c mesh.Cell, face int) {
	b := &fv.valuesBase
	if !b.mapping.IsCompatibleWith(c.Type()) {
		panic(fmt.Sprintf("fe: mapping is not compatible with %v cells", c.Type()))
	}
	if face < 0 || face >= c.NFaces() {
		panic(fmt.Sprintf("fe: face %d out of range for a cell with %d faces", face, c.NFaces()))
	}
	if len(fv.quadratures) != 1 && len(fv.quadratures) != c.NFaces() {
		panic(fmt.Sprintf("fe: quadrature collection has %d rules, want 1 or one per face (%d)",
			len(fv.quadratures), c.NFaces()))
	}
	b.maybeInvalidatePreviousPresentCell(c)
	b.nextCellInvalid = false
	b.presentCell = c
	b.cellBound = true
	b.similarity = SimilarityNone
	fv.presentFace = face
	b.nQuadPoints = fv.faceQuadrature(face).Len()
	b.mapping.FillFaceValues(c, face, fv.quadratures, b.mappingData, b.geom)
	b.element.FillFaceValues(c, face, fv.quadratures,
		b.mapping, b.mappingData, b.geom, b.elementData, b.rows, b.shapes)
}

// PresentFace is the local face index bound by the last Reinit.
func (fv *FEFaceValues) PresentFace() int {
	fv.requireBound("PresentFace")
	return fv.presentFace
}

// nSubfacesPerFace is the number of geometric halves a face is split into
// when evaluation against a once-refined neighbor is needed.
const nSubfacesPerFace = 2

// FESubfaceValues evaluates on one half of a cell face, for terms coupling
// a coarse cell to a refined neighbor: the quadrature rule is mapped onto
// the requested half of the face before being transformed to the cell.
type FESubfaceValues struct {
	valuesBase
	quadrature     Quadrature
	presentFace    int
	presentSubface int
}

func NewFESubfaceValues(m Mapping, el FiniteElement, q Quadrature, flags UpdateFlags) *FESubfaceValues {
	fv := &FESubfaceValues{quadrature: q, presentFace: -1, presentSubface: -1}
	b := &fv.valuesBase
	b.initBase(m, el, flags, q.Len())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.mappingData = m.GetSubfaceData(b.flags, q)
	}()
	go func() {
		defer wg.Done()
		b.elementData = el.GetSubfaceData(b.flags, m, q)
	}()
	wg.Wait()

	b.views = newViewCache(b)
	return fv
}

func (fv *FESubfaceValues) Reinit(c mesh.Cell, face, subface int) {
	b := &fv.valuesBase
	if !b.mapping.IsCompatibleWith(c.Type()) {
		panic(fmt.Sprintf("fe: mapping is not compatible with %v cells", c.Type()))
	}
	if face < 0 || face >= c.NFaces() {
		panic(fmt.Sprintf("fe: face %d out of range for a cell with %d faces", face, c.NFaces()))
	}
	if subface < 0 || subface >= nSubfacesPerFace {
		panic(fmt.Sprintf("fe: subface %d out of range [0,%d)", subface, nSubfacesPerFace))
	}
	b.maybeInvalidatePreviousPresentCell(c)
	b.nextCellInvalid = false
	b.presentCell = c
	b.cellBound = true
	b.similarity = SimilarityNone
	fv.presentFace = face
	fv.presentSubface = subface
	b.mapping.FillSubfaceValues(c, face, subface, fv.quadrature, b.mappingData, b.geom)
	b.element.FillSubfaceValues(c, face, subface, fv.quadrature,
		b.mapping, b.mappingData, b.geom, b.elementData, b.rows, b.shapes)
}

func (fv *FESubfaceValues) PresentFace() int {
	fv.requireBound("PresentFace")
	return fv.presentFace
}

func (fv *FESubfaceValues) PresentSubface() int {
	fv.requireBound("PresentSubface")
	return fv.presentSubface
}
