package fe

import (
	"fmt"

	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/utils"
)

// VectorSource reads one solution coefficient by global index. Any linear
// algebra backend can be adapted through this single accessor.
type VectorSource interface {
	Element(globalIndex int) float64
}

// SliceSource adapts a plain coefficient slice.
type SliceSource []float64

func (s SliceSource) Element(i int) float64 {
	return s[i]
}

// IndexSet is a degenerate {0,1}-valued coefficient source: reading an
// index contained in the set yields 1, anything else 0. It turns the
// evaluation kernels into membership indicators, e.g. for locating where
// a set of degrees of freedom has support.
type IndexSet map[int]struct{}

func NewIndexSet(indices ...int) IndexSet {
	s := make(IndexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

func (s IndexSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

func (s IndexSet) Element(i int) float64 {
	if s.Contains(i) {
		return 1
	}
	return 0
}

// DofMap provides the local-to-global degree-of-freedom numbering of a
// cell. It is the boundary to whatever DoF distribution scheme the host
// application uses.
type DofMap interface {
	// CellDofs appends the global indices of the cell's local dofs, in
	// local order, and returns the extended slice.
	CellDofs(c mesh.Cell, out utils.Index) utils.Index
	// NDofs is the global number of degrees of freedom.
	NDofs() int
}

// gatherDofValues extracts the local coefficient array of the present cell
// from a global source through the attached DofMap.
func (fv *valuesBase) gatherDofValues(src VectorSource, out []float64) {
	if fv.dofMap == nil {
		panic("fe: no DofMap attached; use SetDofMap or an Indexed accessor")
	}
	fv.scratchDofs = fv.dofMap.CellDofs(fv.presentCell, fv.scratchDofs[:0])
	if len(fv.scratchDofs) != fv.dofsPerCell {
		panic(fmt.Sprintf("fe: DofMap returned %d dofs for a cell of a %d-dof element",
			len(fv.scratchDofs), fv.dofsPerCell))
	}
	for i, g := range fv.scratchDofs {
		out[i] = src.Element(g)
	}
}

// gatherIndexed extracts coefficients for an explicit index array; the
// array's length must be a multiple of dofs-per-cell (one block per
// element copy).
func gatherIndexed(src VectorSource, indices utils.Index, out []float64) {
	for i, g := range indices {
		out[i] = src.Element(g)
	}
}
