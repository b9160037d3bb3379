// Package mesh holds the triangulation the evaluation contexts bind to:
// cells with vertex coordinates, face adjacency, and the change
// notification signals that invalidate cached per-cell data.
package mesh

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"

	"github.com/nodalfe/gofeval/tensor"
)

type ElemType uint8

const (
	LineElem ElemType = iota
	QuadElem
)

func (t ElemType) NVertices() int {
	switch t {
	case LineElem:
		return 2
	case QuadElem:
		return 4
	}
	panic("mesh: unknown element type")
}

func (t ElemType) NFaces() int {
	switch t {
	case LineElem:
		return 2
	case QuadElem:
		return 4
	}
	panic("mesh: unknown element type")
}

func (t ElemType) String() string {
	switch t {
	case LineElem:
		return "line"
	case QuadElem:
		return "quad"
	}
	return "unknown"
}

// quadFaceVerts lists, per local face of a quad, the two local vertex
// indices spanning it. Local vertices run counterclockwise from the
// lower-left corner; face f connects vertex f to vertex (f+1) mod 4.
var quadFaceVerts = [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// Triangulation is a fixed set of cells of one reference type. Vertices
// may move (MoveVertices) and topology may be declared changed
// (MarkTopologyChanged); both fire the corresponding signal so that bound
// evaluation contexts invalidate their cached state.
type Triangulation struct {
	Type      ElemType
	Dim       int
	Spacedim  int
	VX, VY    []float64 // vertex coordinates
	EToV      [][]int   // cell -> global vertex, local ordering per type
	EToE      [][]int   // cell -> neighbor cell across local face, -1 boundary
	EToF      [][]int   // cell -> neighbor's local face index, -1 boundary
	dirFlags  []bool
	listeners signalSet
}

// NewCartesianQuads builds an nx by ny axis-aligned quad mesh covering
// [x0,x1] x [y0,y1]. Cells are numbered row-major with x fastest, so
// consecutive cells within a row are pure translates of each other.
func NewCartesianQuads(nx, ny int, x0, y0, x1, y1 float64) *Triangulation {
	if nx < 1 || ny < 1 {
		panic(fmt.Sprintf("mesh: need at least one cell per direction, got %dx%d", nx, ny))
	}
	var (
		nvx = nx + 1
		nvy = ny + 1
		t   = &Triangulation{
			Type:     QuadElem,
			Dim:      2,
			Spacedim: 2,
			VX:       make([]float64, nvx*nvy),
			VY:       make([]float64, nvx*nvy),
			EToV:     make([][]int, nx*ny),
		}
	)
	for j := 0; j < nvy; j++ {
		for i := 0; i < nvx; i++ {
			v := j*nvx + i
			t.VX[v] = x0 + (x1-x0)*float64(i)/float64(nx)
			t.VY[v] = y0 + (y1-y0)*float64(j)/float64(ny)
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			ll := j*nvx + i
			t.EToV[j*nx+i] = []int{ll, ll + 1, ll + 1 + nvx, ll + nvx}
		}
	}
	t.dirFlags = make([]bool, nx*ny)
	for i := range t.dirFlags {
		t.dirFlags[i] = true
	}
	t.connect()
	return t
}

// connect derives face adjacency from shared vertices. A face-to-vertex
// incidence matrix is multiplied with its transpose; two distinct faces
// whose product entry equals the per-face vertex count share all their
// vertices and are therefore the same geometric face seen from both sides.
func (t *Triangulation) connect() {
	var (
		nFaces     = t.Type.NFaces()
		fVerts     = t.faceVertexCount()
		K          = len(t.EToV)
		totalFaces = nFaces * K
		nv         = len(t.VX)
	)
	fToV := sparse.NewDOK(totalFaces, nv)
	for k := 0; k < K; k++ {
		for f := 0; f < nFaces; f++ {
			for _, lv := range t.faceVertices(f) {
				fToV.Set(k*nFaces+f, t.EToV[k][lv], 1)
			}
		}
	}
	var (
		csr  = fToV.ToCSR()
		fToF = sparse.NewCSR(totalFaces, totalFaces, nil, nil, nil)
	)
	fToF.Mul(csr, csr.T())

	t.EToE = make([][]int, K)
	t.EToF = make([][]int, K)
	for k := 0; k < K; k++ {
		t.EToE[k] = make([]int, nFaces)
		t.EToF[k] = make([]int, nFaces)
		for f := 0; f < nFaces; f++ {
			t.EToE[k][f] = -1
			t.EToF[k][f] = -1
		}
	}
	fToF.DoNonZero(func(i, j int, v float64) {
		if i == j || int(v) != fVerts {
			return
		}
		t.EToE[i/nFaces][i%nFaces] = j / nFaces
		t.EToF[i/nFaces][i%nFaces] = j % nFaces
	})
}

func (t *Triangulation) faceVertexCount() int {
	if t.Type == LineElem {
		return 1
	}
	return 2
}

func (t *Triangulation) faceVertices(f int) []int {
	if t.Type == LineElem {
		return []int{f}
	}
	return quadFaceVerts[f][:]
}

func (t *Triangulation) NCells() int {
	return len(t.EToV)
}

func (t *Triangulation) NVertices() int {
	return len(t.VX)
}

func (t *Triangulation) Cell(k int) Cell {
	if k < 0 || k >= len(t.EToV) {
		panic(fmt.Sprintf("mesh: cell index %d out of range [0,%d)", k, len(t.EToV)))
	}
	return Cell{tria: t, index: k}
}

// SetDirectionFlag flips the surface orientation marker of one cell. It is
// only meaningful for meshes embedded in a higher-dimensional space.
func (t *Triangulation) SetDirectionFlag(k int, flag bool) {
	t.dirFlags[k] = flag
}

// MoveVertices displaces every vertex and fires the mesh-movement signal.
func (t *Triangulation) MoveVertices(displace func(x, y float64) (dx, dy float64)) {
	for v := range t.VX {
		dx, dy := displace(t.VX[v], t.VY[v])
		t.VX[v] += dx
		t.VY[v] += dy
	}
	t.listeners.fire(eventMovement)
}

// MarkTopologyChanged declares that cells were added, removed or
// reconnected and fires the topology signal. The caller is responsible for
// having updated EToV and adjacency first.
func (t *Triangulation) MarkTopologyChanged() {
	t.connect()
	t.listeners.fire(eventTopology)
}

// Cell is a lightweight handle to one cell of a triangulation. It is a
// value type; copies refer to the same underlying cell.
type Cell struct {
	tria  *Triangulation
	index int
}

func (c Cell) Tria() *Triangulation { return c.tria }
func (c Cell) Index() int           { return c.index }
func (c Cell) Type() ElemType       { return c.tria.Type }
func (c Cell) NVertices() int       { return c.tria.Type.NVertices() }
func (c Cell) NFaces() int          { return c.tria.Type.NFaces() }

func (c Cell) Vertex(i int) tensor.T1F {
	v := c.tria.EToV[c.index][i]
	return tensor.T1F{c.tria.VX[v], c.tria.VY[v]}
}

// Neighbor returns the cell across local face f; ok is false on the
// boundary.
func (c Cell) Neighbor(f int) (n Cell, ok bool) {
	k := c.tria.EToE[c.index][f]
	if k < 0 {
		return Cell{}, false
	}
	return Cell{tria: c.tria, index: k}, true
}

// NeighborFace is the neighbor's local index of the shared face, -1 on the
// boundary.
func (c Cell) NeighborFace(f int) int {
	return c.tria.EToF[c.index][f]
}

func (c Cell) AtBoundary(f int) bool {
	return c.tria.EToE[c.index][f] < 0
}

// DirectionFlag reports the cell's surface orientation for codimension-one
// meshes; true for all cells of a flat mesh.
func (c Cell) DirectionFlag() bool {
	return c.tria.dirFlags[c.index]
}

// IsTranslationOf reports whether this cell is a pure translate of o: both
// cells live in the same triangulation and the vertex-by-vertex offset is
// one constant vector, to within roundoff of the mesh extent.
func (c Cell) IsTranslationOf(o Cell) bool {
	if c.tria == nil || c.tria != o.tria {
		return false
	}
	var (
		v0 = c.Vertex(0)
		w0 = o.Vertex(0)
		dx = v0[0] - w0[0]
		dy = v0[1] - w0[1]
	)
	eps := 1.e-12 * (math.Abs(dx) + math.Abs(dy) +
		math.Abs(v0[0]) + math.Abs(v0[1]))
	if eps == 0 {
		eps = 1.e-12
	}
	for i := 1; i < c.NVertices(); i++ {
		var (
			v = c.Vertex(i)
			w = o.Vertex(i)
		)
		if math.Abs(v[0]-w[0]-dx) > eps || math.Abs(v[1]-w[1]-dy) > eps {
			return false
		}
	}
	return true
}
