package tensor

// Rank-1 through rank-3 tensors and the unrolled symmetric rank-2 tensor.
// Storage is padded to three space dimensions; operations take the active
// dimension d so the same value types serve 1D, 2D and 3D evaluation.

type T1[S Scalar] [3]S

type T2[S Scalar] [3]T1[S]

type T3[S Scalar] [3]T2[S]

type T4[S Scalar] [3]T3[S]

// Sym2 stores a symmetric rank-2 tensor unrolled as the diagonal entries
// followed by the upper off-diagonal entries in lexicographic order:
//
//	d=2: (0,0) (1,1) (0,1)
//	d=3: (0,0) (1,1) (2,2) (0,1) (0,2) (1,2)
type Sym2[S Scalar] [6]S

// Plain float64 instantiations, the element type of all shape data tables.
type (
	T1F   = T1[float64]
	T2F   = T2[float64]
	T3F   = T3[float64]
	T4F   = T4[float64]
	Sym2F = Sym2[float64]
)

// NSymComponents returns the number of independent components of a
// symmetric rank-2 tensor in d dimensions.
func NSymComponents(d int) int {
	return d * (d + 1) / 2
}

// SymIndex maps tensor indices (i,j) to the unrolled Sym2 slot.
func SymIndex(i, j, d int) int {
	if i == j {
		return i
	}
	if i > j {
		i, j = j, i
	}
	// off-diagonals follow the d diagonal entries
	switch d {
	case 2:
		return 2
	case 3:
		if i == 0 && j == 1 {
			return 3
		}
		if i == 0 && j == 2 {
			return 4
		}
		return 5
	}
	panic("tensor: SymIndex needs d == 2 or 3")
}

// SymComponents is the inverse of SymIndex.
func SymComponents(k, d int) (i, j int) {
	if k < d {
		return k, k
	}
	switch d {
	case 2:
		return 0, 1
	case 3:
		switch k {
		case 3:
			return 0, 1
		case 4:
			return 0, 2
		case 5:
			return 1, 2
		}
	}
	panic("tensor: SymComponents index out of range")
}

// T2Components maps the unrolled (row-major) index of a general rank-2
// tensor to its (i,j) tensor indices.
func T2Components(k, d int) (i, j int) {
	return k / d, k % d
}

// T2Index is the inverse of T2Components.
func T2Index(i, j, d int) int {
	return i*d + j
}

// Trace returns the sum of the first d diagonal entries.
func Trace(t T2F, d int) (tr float64) {
	for i := 0; i < d; i++ {
		tr += t[i][i]
	}
	return
}

// SymmetrizeSingleRow builds sym(e_comp ⊗ g), the symmetrization of a
// rank-2 tensor whose only nonzero row is g placed at row comp.
func SymmetrizeSingleRow(comp int, g T1F, d int) (s Sym2F) {
	for i := 0; i < d; i++ {
		if i == comp {
			s[SymIndex(i, i, d)] = g[i]
		} else {
			s[SymIndex(comp, i, d)] = 0.5 * g[i]
		}
	}
	return
}

// Symmetrize returns (g + gᵀ)/2 in unrolled storage.
func Symmetrize[S Scalar](g T2[S], d int) (s Sym2[S]) {
	for i := 0; i < d; i++ {
		s[i] = g[i][i]
		for j := i + 1; j < d; j++ {
			s[SymIndex(i, j, d)] = Scale(Add(g[i][j], g[j][i]), 0.5)
		}
	}
	return
}

// SymToFull expands unrolled symmetric storage to a full rank-2 tensor.
func SymToFull[S Scalar](s Sym2[S], d int) (t T2[S]) {
	for i := 0; i < d; i++ {
		t[i][i] = s[i]
		for j := i + 1; j < d; j++ {
			t[i][j] = s[SymIndex(i, j, d)]
			t[j][i] = t[i][j]
		}
	}
	return
}

// AddScaledT1 accumulates *dst += v * g over the first d components.
func AddScaledT1[S Scalar](dst *T1[S], v S, g T1F, d int) {
	for i := 0; i < d; i++ {
		dst[i] = Add(dst[i], Scale(v, g[i]))
	}
}

// AddScaledT2 accumulates *dst += v * g over the leading d×d block.
func AddScaledT2[S Scalar](dst *T2[S], v S, g T2F, d int) {
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			dst[i][j] = Add(dst[i][j], Scale(v, g[i][j]))
		}
	}
}

// AddScaledT3 accumulates *dst += v * g over the leading d×d×d block.
func AddScaledT3[S Scalar](dst *T3[S], v S, g T3F, d int) {
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			for k := 0; k < d; k++ {
				dst[i][j][k] = Add(dst[i][j][k], Scale(v, g[i][j][k]))
			}
		}
	}
}

// AddScaledSym2 accumulates *dst += v * s over the independent components.
func AddScaledSym2[S Scalar](dst *Sym2[S], v S, s Sym2F, d int) {
	for k := 0; k < NSymComponents(d); k++ {
		dst[k] = Add(dst[k], Scale(v, s[k]))
	}
}

// AddSym2 accumulates *dst += s over the independent components.
func AddSym2[S Scalar](dst *Sym2[S], s Sym2[S], d int) {
	for k := 0; k < NSymComponents(d); k++ {
		dst[k] = Add(dst[k], s[k])
	}
}
