// Package fe implements the per-cell finite-element evaluation kernel: it
// evaluates shape functions and their derivatives at quadrature points of a
// mesh cell (or cell face/subface) and reconstructs field values, gradients
// and higher derivatives of a discretized solution from its coefficient
// vector. One FEValues object is the working context of one assembly loop;
// it is reinitialized for every cell visited and reuses cached geometric
// data whenever consecutive cells are translates of each other.
package fe

import "strings"

// UpdateFlags selects which quantities an evaluation context computes on
// each Reinit. Requesting a quantity that was not selected at construction
// is a programmer error and panics.
type UpdateFlags uint32

const (
	UpdateDefault UpdateFlags = 0

	UpdateValues UpdateFlags = 1 << iota
	UpdateGradients
	UpdateHessians
	Update3rdDerivatives
	UpdateQuadraturePoints
	UpdateJxW
	UpdateJacobians
	UpdateInverseJacobians
	UpdateNormalVectors
	UpdateBoundaryForms
)

func (f UpdateFlags) Has(bits UpdateFlags) bool {
	return f&bits == bits
}

func (f UpdateFlags) String() string {
	var names []string
	add := func(bit UpdateFlags, name string) {
		if f&bit != 0 {
			names = append(names, name)
		}
	}
	add(UpdateValues, "values")
	add(UpdateGradients, "gradients")
	add(UpdateHessians, "hessians")
	add(Update3rdDerivatives, "3rd_derivatives")
	add(UpdateQuadraturePoints, "quadrature_points")
	add(UpdateJxW, "JxW")
	add(UpdateJacobians, "jacobians")
	add(UpdateInverseJacobians, "inverse_jacobians")
	add(UpdateNormalVectors, "normal_vectors")
	add(UpdateBoundaryForms, "boundary_forms")
	if len(names) == 0 {
		return "default"
	}
	return strings.Join(names, "|")
}
