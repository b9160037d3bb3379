package fe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nodalfe/gofeval/mesh"
)

// stubElement is a component-layout-only element for exercising the row
// table and view machinery; its fill methods are never called.
type stubElement struct {
	nComp int
	masks [][]bool
}

func (e *stubElement) NDofsPerCell() int { return len(e.masks) }
func (e *stubElement) NComponents() int  { return e.nComp }

func (e *stubElement) IsPrimitive() bool { return false }

func (e *stubElement) IsShapePrimitive(i int) bool {
	return e.NNonzeroComponents(i) == 1
}

func (e *stubElement) NonzeroComponents(i int) []bool { return e.masks[i] }

func (e *stubElement) NNonzeroComponents(i int) (n int) {
	for _, nz := range e.masks[i] {
		if nz {
			n++
		}
	}
	return
}

func (e *stubElement) SystemToComponent(i int) int {
	for c, nz := range e.masks[i] {
		if nz {
			return c
		}
	}
	return -1
}

func (e *stubElement) RequiresUpdateFlags(flags UpdateFlags) UpdateFlags { return flags }

func (e *stubElement) GetData(UpdateFlags, Mapping, Quadrature) ElementData      { return nil }
func (e *stubElement) GetFaceData(UpdateFlags, Mapping, []Quadrature) ElementData { return nil }
func (e *stubElement) GetSubfaceData(UpdateFlags, Mapping, Quadrature) ElementData { return nil }

func (e *stubElement) FillCellValues(mesh.Cell, CellSimilarity, Quadrature, Mapping,
	MappingData, *MappingTables, ElementData, *RowTable, *ShapeTables) {
}
func (e *stubElement) FillFaceValues(mesh.Cell, int, []Quadrature, Mapping,
	MappingData, *MappingTables, ElementData, *RowTable, *ShapeTables) {
}
func (e *stubElement) FillSubfaceValues(mesh.Cell, int, int, Quadrature, Mapping,
	MappingData, *MappingTables, ElementData, *RowTable, *ShapeTables) {
}

func newStub(nComp int, masks ...[]bool) *stubElement {
	return &stubElement{nComp: nComp, masks: masks}
}

func TestRowTable(t *testing.T) {
	el := newStub(3,
		[]bool{true, false, false},
		[]bool{false, true, false},
		[]bool{true, true, false},
		[]bool{false, false, true},
		[]bool{true, true, true},
		[]bool{false, false, false},
	)
	rt := BuildRowTable(el)

	// total rows = number of (shape, nonzero component) pairs
	assert.Equal(t, 8, rt.NRows())

	// per shape function, the number of assigned rows equals its declared
	// nonzero count, and rows cover [0, NRows()) without gaps or repeats
	seen := make(map[int]bool)
	for i := 0; i < el.NDofsPerCell(); i++ {
		var n int
		for c := 0; c < el.NComponents(); c++ {
			row, ok := rt.Row(i, c)
			if el.masks[i][c] {
				assert.True(t, ok)
				assert.False(t, seen[row], "row %d assigned twice", row)
				seen[row] = true
				n++
			} else {
				assert.False(t, ok, "shape %d component %d should have no row", i, c)
			}
			_ = row
		}
		assert.Equal(t, el.NNonzeroComponents(i), n)
	}
	assert.Equal(t, rt.NRows(), len(seen))
	for r := 0; r < rt.NRows(); r++ {
		assert.True(t, seen[r], "row %d never assigned", r)
	}

	// consecutive in shape-then-component order
	row, _ := rt.Row(2, 0)
	assert.Equal(t, 2, row)
	row, _ = rt.Row(2, 1)
	assert.Equal(t, 3, row)
	row, _ = rt.Row(4, 2)
	assert.Equal(t, 7, row)
}

func testBase(el FiniteElement, dim, spacedim int) *valuesBase {
	return &valuesBase{
		dim:         dim,
		spacedim:    spacedim,
		element:     el,
		rows:        BuildRowTable(el),
		dofsPerCell: el.NDofsPerCell(),
	}
}

func TestViewClassifier(t *testing.T) {
	el := newStub(3,
		[]bool{true, false, false},  // unique component 0
		[]bool{false, true, false},  // unique component 1
		[]bool{true, true, false},   // two nonzero components
		[]bool{false, false, true},  // unique component 2
		[]bool{false, false, false}, // zero everywhere
	)
	var (
		b  = testBase(el, 3, 3)
		sd = buildComponentShapeData(b, "vector", 0, 3)
	)

	// -2 iff all flags false, -1 iff more than one, else the unique row
	for i := range sd {
		var n int
		for d := 0; d < 3; d++ {
			assert.Equal(t, el.masks[i][d], sd[i].Nonzero[d])
			if sd[i].Nonzero[d] {
				n++
			}
		}
		switch {
		case n == 0:
			assert.Equal(t, -2, sd[i].SingleNonzeroComponent)
		case n > 1:
			assert.Equal(t, -1, sd[i].SingleNonzeroComponent)
		default:
			var d int
			for d = 0; d < 3; d++ {
				if sd[i].Nonzero[d] {
					break
				}
			}
			row, ok := b.rows.Row(i, d)
			assert.True(t, ok)
			assert.Equal(t, row, sd[i].SingleNonzeroComponent)
			assert.Equal(t, d, sd[i].SingleNonzeroIndex)
		}
	}

	// scalar view of component 1
	sv := newScalarView(b, 1)
	assert.False(t, sv.shapeData[0].Nonzero)
	assert.True(t, sv.shapeData[1].Nonzero)
	assert.True(t, sv.shapeData[2].Nonzero)
	row, _ := b.rows.Row(2, 1)
	assert.Equal(t, row, sv.shapeData[2].Row)
}

func TestViewRangePanics(t *testing.T) {
	var (
		el = newStub(2, []bool{true, false}, []bool{false, true})
		b  = testBase(el, 2, 2)
	)
	assert.Panics(t, func() { newScalarView(b, 2) })
	assert.Panics(t, func() { buildComponentShapeData(b, "vector", 1, 2) })
	assert.NotPanics(t, func() { newScalarView(b, 1) })
	assert.NotPanics(t, func() { buildComponentShapeData(b, "vector", 0, 2) })
}

func TestViewCacheCounts(t *testing.T) {
	// 5 components in 2D: 5 scalar views, 4 vector windows (width 2),
	// 3 symmetric tensor windows (width 3), 2 tensor windows (width 4)
	masks := make([][]bool, 5)
	for i := range masks {
		m := make([]bool, 5)
		m[i] = true
		masks[i] = m
	}
	var (
		el = newStub(5, masks...)
		b  = testBase(el, 2, 2)
	)
	b.views = newViewCache(b)
	assert.Equal(t, 5, len(b.views.scalars))
	assert.Equal(t, 4, len(b.views.vectors))
	assert.Equal(t, 3, len(b.views.symTensors))
	assert.Equal(t, 2, len(b.views.tensors))

	// fewer components than the window width yields no views
	el1 := newStub(1, []bool{true})
	b1 := testBase(el1, 2, 2)
	b1.views = newViewCache(b1)
	assert.Equal(t, 1, len(b1.views.scalars))
	assert.Equal(t, 0, len(b1.views.vectors))
}
