package fe

import (
	"math"

	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
)

// Quadrature is a set of reference-cell sample points and weights.
type Quadrature struct {
	Points  []tensor.T1F
	Weights []float64
}

func (q Quadrature) Len() int {
	return len(q.Points)
}

// MappingData and ElementData are opaque scratch state a Mapping or
// FiniteElement sets up once per evaluation context and reads on every
// fill call.
type (
	MappingData any
	ElementData any
)

// MappingTables holds the per-quadrature-point geometric data a Mapping
// produces. Which slices are populated is governed by the update flags the
// context was constructed with.
type MappingTables struct {
	JxW              []float64
	QPoints          []tensor.T1F
	Jacobians        []tensor.T2F
	InverseJacobians []tensor.T2F
	Normals          []tensor.T1F
	BoundaryForms    []tensor.T1F
}

func newMappingTables(nq int, flags UpdateFlags) *MappingTables {
	t := &MappingTables{}
	if flags.Has(UpdateJxW) {
		t.JxW = make([]float64, nq)
	}
	if flags.Has(UpdateQuadraturePoints) {
		t.QPoints = make([]tensor.T1F, nq)
	}
	if flags.Has(UpdateJacobians) {
		t.Jacobians = make([]tensor.T2F, nq)
	}
	if flags.Has(UpdateInverseJacobians) {
		t.InverseJacobians = make([]tensor.T2F, nq)
	}
	if flags.Has(UpdateNormalVectors) {
		t.Normals = make([]tensor.T1F, nq)
	}
	if flags.Has(UpdateBoundaryForms) {
		t.BoundaryForms = make([]tensor.T1F, nq)
	}
	return t
}

// ShapeTables is the dense [row][quadrature point] storage the kernels
// contract coefficients against. Rows are assigned by the RowTable. The
// tables are poisoned with NaN at construction so that reading a row a
// fill never wrote is detectable in test output.
type ShapeTables struct {
	Values           [][]float64
	Gradients        [][]tensor.T1F
	Hessians         [][]tensor.T2F
	ThirdDerivatives [][]tensor.T3F
}

func newShapeTables(nRows, nq int, flags UpdateFlags) *ShapeTables {
	var (
		nan = math.NaN()
		t   = &ShapeTables{}
	)
	if flags.Has(UpdateValues) {
		t.Values = make([][]float64, nRows)
		for r := range t.Values {
			row := make([]float64, nq)
			for q := range row {
				row[q] = nan
			}
			t.Values[r] = row
		}
	}
	nanT1 := tensor.T1F{nan, nan, nan}
	if flags.Has(UpdateGradients) {
		t.Gradients = make([][]tensor.T1F, nRows)
		for r := range t.Gradients {
			row := make([]tensor.T1F, nq)
			for q := range row {
				row[q] = nanT1
			}
			t.Gradients[r] = row
		}
	}
	nanT2 := tensor.T2F{nanT1, nanT1, nanT1}
	if flags.Has(UpdateHessians) {
		t.Hessians = make([][]tensor.T2F, nRows)
		for r := range t.Hessians {
			row := make([]tensor.T2F, nq)
			for q := range row {
				row[q] = nanT2
			}
			t.Hessians[r] = row
		}
	}
	if flags.Has(Update3rdDerivatives) {
		nanT3 := tensor.T3F{nanT2, nanT2, nanT2}
		t.ThirdDerivatives = make([][]tensor.T3F, nRows)
		for r := range t.ThirdDerivatives {
			row := make([]tensor.T3F, nq)
			for q := range row {
				row[q] = nanT3
			}
			t.ThirdDerivatives[r] = row
		}
	}
	return t
}

// Mapping produces the geometry of one concrete cell: Jacobians of the
// reference-to-physical transformation, transformed quadrature points,
// integration weights and face normals.
type Mapping interface {
	// Dims returns the reference-cell dimension and the dimension of the
	// space the cells are embedded in; spacedim >= dim.
	Dims() (dim, spacedim int)

	// RequiresUpdateFlags closes a flag set over the mapping's own needs.
	RequiresUpdateFlags(flags UpdateFlags) UpdateFlags

	// GetData precomputes reference-cell state reused across Reinit calls.
	GetData(flags UpdateFlags, q Quadrature) MappingData
	GetFaceData(flags UpdateFlags, q []Quadrature) MappingData
	GetSubfaceData(flags UpdateFlags, q Quadrature) MappingData

	// FillCellValues populates out for the given cell. The similarity
	// passed in tells the mapping what it may reuse; the returned value
	// may downgrade it (never upgrade) when the mapping's internal state
	// cannot be reused on the next cell.
	FillCellValues(c mesh.Cell, sim CellSimilarity, q Quadrature,
		data MappingData, out *MappingTables) CellSimilarity
	FillFaceValues(c mesh.Cell, face int, q []Quadrature,
		data MappingData, out *MappingTables)
	FillSubfaceValues(c mesh.Cell, face, subface int, q Quadrature,
		data MappingData, out *MappingTables)

	// IsCompatibleWith reports whether the mapping can transform cells of
	// the given reference type.
	IsCompatibleWith(t mesh.ElemType) bool
}

// FiniteElement describes a (possibly vector-valued) element: its
// component layout and how its shape functions map to physical cells.
type FiniteElement interface {
	NDofsPerCell() int
	NComponents() int

	// IsPrimitive reports whether every shape function is nonzero in
	// exactly one component; IsShapePrimitive asks the same for a single
	// shape function of an element that is not primitive overall.
	IsPrimitive() bool
	IsShapePrimitive(i int) bool

	// NonzeroComponents returns the per-component nonzero mask of shape
	// function i; NNonzeroComponents its popcount. SystemToComponent is
	// only meaningful for primitive shape functions.
	NonzeroComponents(i int) []bool
	NNonzeroComponents(i int) int
	SystemToComponent(i int) int

	RequiresUpdateFlags(flags UpdateFlags) UpdateFlags

	GetData(flags UpdateFlags, m Mapping, q Quadrature) ElementData
	GetFaceData(flags UpdateFlags, m Mapping, q []Quadrature) ElementData
	GetSubfaceData(flags UpdateFlags, m Mapping, q Quadrature) ElementData

	// FillCellValues populates the shape tables for the present cell,
	// reading the geometric tables the mapping just produced.
	FillCellValues(c mesh.Cell, sim CellSimilarity, q Quadrature,
		m Mapping, mdata MappingData, geom *MappingTables,
		data ElementData, rows *RowTable, out *ShapeTables)
	FillFaceValues(c mesh.Cell, face int, q []Quadrature,
		m Mapping, mdata MappingData, geom *MappingTables,
		data ElementData, rows *RowTable, out *ShapeTables)
	FillSubfaceValues(c mesh.Cell, face, subface int, q Quadrature,
		m Mapping, mdata MappingData, geom *MappingTables,
		data ElementData, rows *RowTable, out *ShapeTables)
}
