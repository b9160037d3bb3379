package elements

import (
	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
)

// Q1Element is the scalar bilinear Lagrange element on the reference
// square: four shape functions, one per vertex, each equal to one at its
// vertex and zero at the others. It is isoparametric with MappingQ1, so
// the reference basis evaluations are shared through q1PointSet.
type Q1Element struct{}

func NewQ1() *Q1Element {
	return &Q1Element{}
}

func (el *Q1Element) NDofsPerCell() int { return 4 }
func (el *Q1Element) NComponents() int  { return 1 }

func (el *Q1Element) IsPrimitive() bool           { return true }
func (el *Q1Element) IsShapePrimitive(i int) bool { return true }

var scalarMask = []bool{true}

func (el *Q1Element) NonzeroComponents(i int) []bool { return scalarMask }
func (el *Q1Element) NNonzeroComponents(i int) int   { return 1 }
func (el *Q1Element) SystemToComponent(i int) int    { return 0 }

func (el *Q1Element) RequiresUpdateFlags(flags fe.UpdateFlags) fe.UpdateFlags {
	if flags.Has(fe.UpdateGradients) || flags.Has(fe.UpdateHessians) ||
		flags.Has(fe.Update3rdDerivatives) {
		flags |= fe.UpdateInverseJacobians
	}
	return flags
}

type q1ElementData struct {
	flags    fe.UpdateFlags
	cell     q1PointSet
	faces    [4]q1PointSet
	subfaces [4][2]q1PointSet
}

func (el *Q1Element) GetData(flags fe.UpdateFlags, m fe.Mapping, q fe.Quadrature) fe.ElementData {
	return &q1ElementData{
		flags: flags,
		cell:  newQ1PointSet(q.Points, q.Weights),
	}
}

func (el *Q1Element) GetFaceData(flags fe.UpdateFlags, m fe.Mapping, q []fe.Quadrature) fe.ElementData {
	d := &q1ElementData{flags: flags}
	for f := 0; f < 4; f++ {
		rule := q[0]
		if len(q) > 1 {
			rule = q[f]
		}
		pts := make([]tensor.T1F, rule.Len())
		for i, p := range rule.Points {
			pts[i] = facePoint(f, p[0])
		}
		d.faces[f] = newQ1PointSet(pts, rule.Weights)
	}
	return d
}

func (el *Q1Element) GetSubfaceData(flags fe.UpdateFlags, m fe.Mapping, q fe.Quadrature) fe.ElementData {
	d := &q1ElementData{flags: flags}
	for f := 0; f < 4; f++ {
		for s := 0; s < 2; s++ {
			pts := make([]tensor.T1F, q.Len())
			for i, p := range q.Points {
				pts[i] = facePoint(f, subfaceParam(s, p[0]))
			}
			d.subfaces[f][s] = newQ1PointSet(pts, q.Weights)
		}
	}
	return d
}

// mappingSecondDeriv recovers the cell transformation's second derivative
// from the mapping's scratch data; nil when the mapping is not the
// isoparametric MappingQ1 or Hessians were not requested.
func mappingSecondDeriv(mdata fe.MappingData) *[2]tensor.T2F {
	if md, ok := mdata.(*q1MappingData); ok {
		return &md.SecondDeriv
	}
	return nil
}

// fillTransformed pushes the reference basis at the point set forward to
// the physical cell: values carry over, gradients contract with the
// inverse Jacobian, Hessians additionally pick up the curvature term of a
// non-affine cell through the chain rule.
func (el *Q1Element) fillTransformed(s *q1PointSet, sim fe.CellSimilarity,
	flags fe.UpdateFlags, geom *fe.MappingTables, K *[2]tensor.T2F,
	rows *fe.RowTable, out *fe.ShapeTables) {
	if sim == fe.SimilarityTranslation || sim == fe.SimilarityInvertedTranslation {
		// the inverse Jacobians did not change, neither do any tables
		return
	}
	nq := len(s.points)
	for i := 0; i < 4; i++ {
		row, _ := rows.Row(i, 0)
		if flags.Has(fe.UpdateValues) {
			copy(out.Values[row][:nq], s.phi[i][:nq])
		}
		if flags.Has(fe.UpdateGradients) {
			for q := 0; q < nq; q++ {
				var (
					inv = geom.InverseJacobians[q]
					g   = s.dphi[i][q]
				)
				out.Gradients[row][q] = tensor.T1F{
					inv[0][0]*g[0] + inv[1][0]*g[1],
					inv[0][1]*g[0] + inv[1][1]*g[1],
				}
			}
		}
		if flags.Has(fe.UpdateHessians) {
			cross := bilinearCross(i)
			for q := 0; q < nq; q++ {
				var (
					inv = geom.InverseJacobians[q]
					g   = s.dphi[i][q]
					h   tensor.T2F
				)
				for a := 0; a < 2; a++ {
					for b := 0; b < 2; b++ {
						// reference Hessian of the bilinear basis has only
						// the mixed term
						h[a][b] = cross * (inv[0][a]*inv[1][b] + inv[1][a]*inv[0][b])
					}
				}
				if K != nil {
					// curvature of the cell transformation:
					// d2xi_j/dx_a dx_b = -invJ[j][p] K_p[m][n] invJ[m][a] invJ[n][b]
					for a := 0; a < 2; a++ {
						for b := 0; b < 2; b++ {
							for j := 0; j < 2; j++ {
								var kab float64
								for p := 0; p < 2; p++ {
									var kpab float64
									for mm := 0; mm < 2; mm++ {
										for nn := 0; nn < 2; nn++ {
											kpab += K[p][mm][nn] * inv[mm][a] * inv[nn][b]
										}
									}
									kab += inv[j][p] * kpab
								}
								h[a][b] -= kab * g[j]
							}
						}
					}
				}
				out.Hessians[row][q] = h
			}
		}
		if flags.Has(fe.Update3rdDerivatives) {
			// the bilinear reference third derivatives vanish; the push
			// forward is exact on affine cells
			for q := 0; q < nq; q++ {
				out.ThirdDerivatives[row][q] = tensor.T3F{}
			}
		}
	}
}

func (el *Q1Element) FillCellValues(c mesh.Cell, sim fe.CellSimilarity, q fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*q1ElementData)
	el.fillTransformed(&d.cell, sim, d.flags, geom, mappingSecondDeriv(mdata), rows, out)
}

func (el *Q1Element) FillFaceValues(c mesh.Cell, face int, q []fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*q1ElementData)
	el.fillTransformed(&d.faces[face], fe.SimilarityNone, d.flags, geom,
		mappingSecondDeriv(mdata), rows, out)
}

func (el *Q1Element) FillSubfaceValues(c mesh.Cell, face, subface int, q fe.Quadrature,
	m fe.Mapping, mdata fe.MappingData, geom *fe.MappingTables,
	data fe.ElementData, rows *fe.RowTable, out *fe.ShapeTables) {
	d := data.(*q1ElementData)
	el.fillTransformed(&d.subfaces[face][subface], fe.SimilarityNone, d.flags, geom,
		mappingSecondDeriv(mdata), rows, out)
}
