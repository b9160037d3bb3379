package elements

import (
	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/utils"
)

// Q1DofMap numbers one degree of freedom per vertex and component, with
// components blocked: dof = component*nVertices + vertex. The local
// ordering matches VectorElement's block layout, component outermost.
type Q1DofMap struct {
	tria  *mesh.Triangulation
	nComp int
}

func NewQ1DofMap(t *mesh.Triangulation, nComponents int) *Q1DofMap {
	if nComponents < 1 {
		panic("elements: Q1DofMap needs at least one component")
	}
	return &Q1DofMap{tria: t, nComp: nComponents}
}

func (m *Q1DofMap) CellDofs(c mesh.Cell, out utils.Index) utils.Index {
	var (
		nv    = m.tria.NVertices()
		verts = utils.Index(m.tria.EToV[c.Index()])
	)
	for comp := 0; comp < m.nComp; comp++ {
		out = append(out, verts.Add(comp*nv)...)
	}
	return out
}

func (m *Q1DofMap) NDofs() int {
	return m.nComp * m.tria.NVertices()
}

var _ fe.DofMap = (*Q1DofMap)(nil)
