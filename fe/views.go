package fe

import (
	"fmt"

	"github.com/nodalfe/gofeval/tensor"
)

// Views expose a window of consecutive vector components of an element as
// a scalar, vector, symmetric-tensor or tensor field. A view is derived
// once per (element, component offset) pair when the evaluation context is
// constructed and is immutable afterwards; every per-quadrature-point
// evaluation runs off its precomputed per-shape-function data.

// ScalarShapeData records, for one shape function, whether it is nonzero
// in the view's component and if so which shape-table row holds its data.
type ScalarShapeData struct {
	Nonzero bool
	Row     int
}

// ComponentShapeData is the per-shape-function layout of a K-component
// view (vector, symmetric tensor or tensor). SingleNonzeroComponent is the
// ternary classifier central to kernel performance: -2 means the shape
// function is zero in all K sub-components and is skipped outright, -1
// means several sub-components are nonzero and the kernel must loop over
// them, and any other value is the table row of the unique nonzero
// sub-component, whose index is SingleNonzeroIndex.
type ComponentShapeData struct {
	Nonzero                [9]bool
	Row                    [9]int
	SingleNonzeroComponent int
	SingleNonzeroIndex     int
}

type ScalarView struct {
	fv        *valuesBase
	component int
	shapeData []ScalarShapeData
}

type VectorView struct {
	fv                   *valuesBase
	firstVectorComponent int
	nSub                 int
	shapeData            []ComponentShapeData
}

type SymTensorView struct {
	fv                   *valuesBase
	firstTensorComponent int
	nSub                 int
	shapeData            []ComponentShapeData
}

type TensorView struct {
	fv                   *valuesBase
	firstTensorComponent int
	nSub                 int
	shapeData            []ComponentShapeData
}

func newScalarView(fv *valuesBase, component int) ScalarView {
	var (
		el    = fv.element
		nComp = el.NComponents()
	)
	if component >= nComp {
		panic(fmt.Sprintf("fe: scalar view component %d out of range for a %d-component element",
			component, nComp))
	}
	v := ScalarView{
		fv:        fv,
		component: component,
		shapeData: make([]ScalarShapeData, el.NDofsPerCell()),
	}
	for i := range v.shapeData {
		if el.IsPrimitive() || el.IsShapePrimitive(i) {
			v.shapeData[i].Nonzero = component == el.SystemToComponent(i)
		} else {
			v.shapeData[i].Nonzero = el.NonzeroComponents(i)[component]
		}
		if v.shapeData[i].Nonzero {
			row, ok := fv.rows.Row(i, component)
			if !ok {
				panic("fe: row table disagrees with nonzero-component mask")
			}
			v.shapeData[i].Row = row
		} else {
			v.shapeData[i].Row = -1
		}
	}
	return v
}

// buildComponentShapeData derives the layout of a view spanning the nSub
// components [first, first+nSub) and computes the ternary classifier.
func buildComponentShapeData(fv *valuesBase, kind string, first, nSub int) []ComponentShapeData {
	var (
		el    = fv.element
		nComp = el.NComponents()
	)
	if first+nSub > nComp {
		panic(fmt.Sprintf("fe: %s view of components [%d,%d) out of range for a %d-component element",
			kind, first, first+nSub, nComp))
	}
	sd := make([]ComponentShapeData, el.NDofsPerCell())
	for d := 0; d < nSub; d++ {
		component := first + d
		for i := range sd {
			var nonzero bool
			if el.IsPrimitive() || el.IsShapePrimitive(i) {
				nonzero = component == el.SystemToComponent(i)
			} else {
				nonzero = el.NonzeroComponents(i)[component]
			}
			sd[i].Nonzero[d] = nonzero
			if nonzero {
				row, ok := fv.rows.Row(i, component)
				if !ok {
					panic("fe: row table disagrees with nonzero-component mask")
				}
				sd[i].Row[d] = row
			} else {
				sd[i].Row[d] = -1
			}
		}
	}
	for i := range sd {
		n := 0
		for d := 0; d < nSub; d++ {
			if sd[i].Nonzero[d] {
				n++
			}
		}
		switch {
		case n == 0:
			sd[i].SingleNonzeroComponent = -2
		case n > 1:
			sd[i].SingleNonzeroComponent = -1
		default:
			for d := 0; d < nSub; d++ {
				if sd[i].Nonzero[d] {
					sd[i].SingleNonzeroComponent = sd[i].Row[d]
					sd[i].SingleNonzeroIndex = d
					break
				}
			}
		}
	}
	return sd
}

func newVectorView(fv *valuesBase, first int) VectorView {
	nSub := fv.spacedim
	return VectorView{
		fv:                   fv,
		firstVectorComponent: first,
		nSub:                 nSub,
		shapeData:            buildComponentShapeData(fv, "vector", first, nSub),
	}
}

func newSymTensorView(fv *valuesBase, first int) SymTensorView {
	nSub := tensor.NSymComponents(fv.spacedim)
	return SymTensorView{
		fv:                   fv,
		firstTensorComponent: first,
		nSub:                 nSub,
		shapeData:            buildComponentShapeData(fv, "symmetric tensor", first, nSub),
	}
}

func newTensorView(fv *valuesBase, first int) TensorView {
	nSub := fv.dim * fv.dim
	return TensorView{
		fv:                   fv,
		firstTensorComponent: first,
		nSub:                 nSub,
		shapeData:            buildComponentShapeData(fv, "tensor", first, nSub),
	}
}

// viewCache holds one view of each variant for every valid component
// offset, so repeated lookups cost nothing beyond an index check.
type viewCache struct {
	scalars    []ScalarView
	vectors    []VectorView
	symTensors []SymTensorView
	tensors    []TensorView
}

func slidingWindows(nComponents, width int) int {
	if nComponents < width {
		return 0
	}
	return nComponents - width + 1
}

func newViewCache(fv *valuesBase) *viewCache {
	var (
		nComp = fv.element.NComponents()
		c     = &viewCache{}
	)
	c.scalars = make([]ScalarView, nComp)
	for i := range c.scalars {
		c.scalars[i] = newScalarView(fv, i)
	}
	c.vectors = make([]VectorView, slidingWindows(nComp, fv.spacedim))
	for i := range c.vectors {
		c.vectors[i] = newVectorView(fv, i)
	}
	c.symTensors = make([]SymTensorView, slidingWindows(nComp, tensor.NSymComponents(fv.spacedim)))
	for i := range c.symTensors {
		c.symTensors[i] = newSymTensorView(fv, i)
	}
	c.tensors = make([]TensorView, slidingWindows(nComp, fv.dim*fv.dim))
	for i := range c.tensors {
		c.tensors[i] = newTensorView(fv, i)
	}
	return c
}
