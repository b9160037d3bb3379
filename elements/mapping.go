package elements

import (
	"fmt"
	"math"

	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
)

// Reference quad geometry shared by the mapping and the Q1 element. Local
// vertices run counterclockwise from the lower-left corner of [-1,1]^2,
// matching the mesh's vertex ordering; face f runs from vertex f to vertex
// (f+1) mod 4, so the counterclockwise tangent makes (t_y, -t_x) the
// outward normal.
var refVerts = [4]tensor.T1F{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

func bilinearValue(v int, p tensor.T1F) float64 {
	return 0.25 * (1 + p[0]*refVerts[v][0]) * (1 + p[1]*refVerts[v][1])
}

func bilinearGrad(v int, p tensor.T1F) tensor.T1F {
	return tensor.T1F{
		0.25 * refVerts[v][0] * (1 + p[1]*refVerts[v][1]),
		0.25 * refVerts[v][1] * (1 + p[0]*refVerts[v][0]),
	}
}

// bilinearCross is the only nonzero second derivative of the bilinear
// basis, the constant mixed term.
func bilinearCross(v int) float64 {
	return 0.25 * refVerts[v][0] * refVerts[v][1]
}

// facePoint maps the face parameter t in [-1,1] onto face f of the
// reference square, following the face's vertex order.
func facePoint(f int, t float64) tensor.T1F {
	switch f {
	case 0:
		return tensor.T1F{t, -1}
	case 1:
		return tensor.T1F{1, t}
	case 2:
		return tensor.T1F{-t, 1}
	case 3:
		return tensor.T1F{-1, -t}
	}
	panic(fmt.Sprintf("elements: face %d out of range for a quad", f))
}

func faceTangent(f int) tensor.T1F {
	switch f {
	case 0:
		return tensor.T1F{1, 0}
	case 1:
		return tensor.T1F{0, 1}
	case 2:
		return tensor.T1F{-1, 0}
	case 3:
		return tensor.T1F{0, -1}
	}
	panic(fmt.Sprintf("elements: face %d out of range for a quad", f))
}

// subfaceParam maps the parameter of a half-face rule into the parent
// face's parameter range: subface 0 covers [-1,0], subface 1 covers [0,1].
func subfaceParam(subface int, t float64) float64 {
	if subface == 0 {
		return (t - 1) / 2
	}
	return (t + 1) / 2
}

// MappingQ1 transforms the reference square [-1,1]^2 onto arbitrary
// (convex) quadrilateral cells with the bilinear vertex basis.
type MappingQ1 struct{}

func NewMappingQ1() *MappingQ1 {
	return &MappingQ1{}
}

func (m *MappingQ1) Dims() (dim, spacedim int) {
	return 2, 2
}

func (m *MappingQ1) RequiresUpdateFlags(flags fe.UpdateFlags) fe.UpdateFlags {
	if flags.Has(fe.UpdateJxW) || flags.Has(fe.UpdateInverseJacobians) ||
		flags.Has(fe.UpdateNormalVectors) || flags.Has(fe.UpdateBoundaryForms) {
		flags |= fe.UpdateJacobians
	}
	return flags
}

func (m *MappingQ1) IsCompatibleWith(t mesh.ElemType) bool {
	return t == mesh.QuadElem
}

// q1PointSet is the reference geometry basis evaluated at one fixed set of
// reference points, plus the integration weights those points carry.
type q1PointSet struct {
	points  []tensor.T1F
	weights []float64
	phi     [4][]float64
	dphi    [4][]tensor.T1F
}

func newQ1PointSet(points []tensor.T1F, weights []float64) q1PointSet {
	s := q1PointSet{points: points, weights: weights}
	for v := 0; v < 4; v++ {
		s.phi[v] = make([]float64, len(points))
		s.dphi[v] = make([]tensor.T1F, len(points))
		for q, p := range points {
			s.phi[v][q] = bilinearValue(v, p)
			s.dphi[v][q] = bilinearGrad(v, p)
		}
	}
	return s
}

// q1MappingData is the mapping's per-context scratch state. SecondDeriv is
// refreshed on every non-translation fill and read by the Q1 element's
// Hessian pushforward; it is the second derivative of the cell
// transformation, constant over a bilinear cell.
type q1MappingData struct {
	flags fe.UpdateFlags
	cell  q1PointSet

	// face and subface variants keep one point set per (face[, half])
	faces    [4]q1PointSet
	subfaces [4][2]q1PointSet

	SecondDeriv [2]tensor.T2F
}

func (m *MappingQ1) GetData(flags fe.UpdateFlags, q fe.Quadrature) fe.MappingData {
	return &q1MappingData{
		flags: flags,
		cell:  newQ1PointSet(q.Points, q.Weights),
	}
}

func (m *MappingQ1) GetFaceData(flags fe.UpdateFlags, q []fe.Quadrature) fe.MappingData {
	d := &q1MappingData{flags: flags}
	for f := 0; f < 4; f++ {
		rule := q[0]
		if len(q) > 1 {
			rule = q[f]
		}
		var (
			pts = make([]tensor.T1F, rule.Len())
		)
		for i, p := range rule.Points {
			pts[i] = facePoint(f, p[0])
		}
		d.faces[f] = newQ1PointSet(pts, rule.Weights)
	}
	return d
}

func (m *MappingQ1) GetSubfaceData(flags fe.UpdateFlags, q fe.Quadrature) fe.MappingData {
	d := &q1MappingData{flags: flags}
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

func cellVertices(c mesh.Cell) (verts [4]tensor.T1F) {
	for v := 0; v < 4; v++ {
		verts[v] = c.Vertex(v)
	}
	return
}

func jacobianAt(verts [4]tensor.T1F, dphi [4][]tensor.T1F, q int) (j tensor.T2F) {
	for v := 0; v < 4; v++ {
		g := dphi[v][q]
		for p := 0; p < 2; p++ {
			j[p][0] += verts[v][p] * g[0]
			j[p][1] += verts[v][p] * g[1]
		}
	}
	return
}

func invert2x2(j tensor.T2F) (inv tensor.T2F, det float64) {
	det = j[0][0]*j[1][1] - j[0][1]*j[1][0]
	if det <= 0 {
		panic(fmt.Sprintf("elements: cell mapping is singular or inverted, det J = %g", det))
	}
	inv[0][0] = j[1][1] / det
	inv[0][1] = -j[0][1] / det
	inv[1][0] = -j[1][0] / det
	inv[1][1] = j[0][0] / det
	return
}

func (m *MappingQ1) FillCellValues(c mesh.Cell, sim fe.CellSimilarity, q fe.Quadrature,
	data fe.MappingData, out *fe.MappingTables) fe.CellSimilarity {
	var (
		d     = data.(*q1MappingData)
		verts = cellVertices(c)
		s     = &d.cell
	)
	// quadrature points move with the cell even under pure translation
	if d.flags.Has(fe.UpdateQuadraturePoints) {
		for qp := range s.points {
			var x tensor.T1F
			for v := 0; v < 4; v++ {
				x[0] += s.phi[v][qp] * verts[v][0]
				x[1] += s.phi[v][qp] * verts[v][1]
			}
			out.QPoints[qp] = x
		}
	}
	if sim == fe.SimilarityTranslation || sim == fe.SimilarityInvertedTranslation {
		// Jacobians, inverses, JxW and the cell's second derivative are
		// translation invariant and stay as the previous fill left them
		return sim
	}
	if d.flags.Has(fe.UpdateJacobians) {
		for qp := range s.points {
			j := jacobianAt(verts, s.dphi, qp)
			out.Jacobians[qp] = j
			if d.flags.Has(fe.UpdateInverseJacobians) || d.flags.Has(fe.UpdateJxW) {
				inv, det := invert2x2(j)
				if d.flags.Has(fe.UpdateInverseJacobians) {
					out.InverseJacobians[qp] = inv
				}
				if d.flags.Has(fe.UpdateJxW) {
					out.JxW[qp] = det * s.weights[qp]
				}
			}
		}
	}
	if d.flags.Has(fe.UpdateHessians) {
		d.SecondDeriv = [2]tensor.T2F{}
		for v := 0; v < 4; v++ {
			cross := bilinearCross(v)
			for p := 0; p < 2; p++ {
				d.SecondDeriv[p][0][1] += verts[v][p] * cross
				d.SecondDeriv[p][1][0] += verts[v][p] * cross
			}
		}
	}
	return sim
}

func (m *MappingQ1) fillBoundary(verts [4]tensor.T1F, s *q1PointSet, tangent tensor.T1F,
	lengthScale float64, d *q1MappingData, out *fe.MappingTables) {
	for qp := range s.points {
		j := jacobianAt(verts, s.dphi, qp)
		if d.flags.Has(fe.UpdateJacobians) {
			out.Jacobians[qp] = j
		}
		if d.flags.Has(fe.UpdateInverseJacobians) {
			out.InverseJacobians[qp], _ = invert2x2(j)
		}
		if d.flags.Has(fe.UpdateQuadraturePoints) {
			var x tensor.T1F
			for v := 0; v < 4; v++ {
				x[0] += s.phi[v][qp] * verts[v][0]
				x[1] += s.phi[v][qp] * verts[v][1]
			}
			out.QPoints[qp] = x
		}
		// dx/dt along the face; rotating it clockwise by 90 degrees gives
		// the outward boundary form
		var (
			dxdt = tensor.T1F{
				j[0][0]*tangent[0] + j[0][1]*tangent[1],
				j[1][0]*tangent[0] + j[1][1]*tangent[1],
			}
			bform = tensor.T1F{dxdt[1] * lengthScale, -dxdt[0] * lengthScale}
			norm  = math.Hypot(bform[0], bform[1])
		)
		if d.flags.Has(fe.UpdateBoundaryForms) {
			out.BoundaryForms[qp] = bform
		}
		if d.flags.Has(fe.UpdateNormalVectors) {
			out.Normals[qp] = tensor.T1F{bform[0] / norm, bform[1] / norm}
		}
		if d.flags.Has(fe.UpdateJxW) {
			out.JxW[qp] = norm * s.weights[qp]
		}
	}
	if d.flags.Has(fe.UpdateHessians) {
		d.SecondDeriv = [2]tensor.T2F{}
		for v := 0; v < 4; v++ {
			cross := bilinearCross(v)
			for p := 0; p < 2; p++ {
				d.SecondDeriv[p][0][1] += verts[v][p] * cross
				d.SecondDeriv[p][1][0] += verts[v][p] * cross
			}
		}
	}
}

func (m *MappingQ1) FillFaceValues(c mesh.Cell, face int, q []fe.Quadrature,
	data fe.MappingData, out *fe.MappingTables) {
	d := data.(*q1MappingData)
	m.fillBoundary(cellVertices(c), &d.faces[face], faceTangent(face), 1, d, out)
}

func (m *MappingQ1) FillSubfaceValues(c mesh.Cell, face, subface int, q fe.Quadrature,
	data fe.MappingData, out *fe.MappingTables) {
	// the half-face parameterization compresses the tangent by two
	d := data.(*q1MappingData)
	m.fillBoundary(cellVertices(c), &d.subfaces[face][subface], faceTangent(face), 0.5, d, out)
}
