// Package utils carries the small index helpers shared by the mesh and
// degree-of-freedom layers, and the optional BLAS acceleration hook.
package utils

type Index []int

// Add returns a new Index with val added to every entry.
func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}
