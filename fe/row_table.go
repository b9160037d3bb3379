package fe

// RowTable compresses the (shape function, component) nonzero layout of a
// finite element into a dense row numbering. Row r of the shape data
// tables holds the values of the r-th (shape function, nonzero component)
// pair, with rows assigned consecutively in shape-function-then-component
// order, so primitive elements waste no rows.
type RowTable struct {
	nComponents int
	rows        []int32 // -1 marks a structurally zero pair
	nRows       int
}

// BuildRowTable derives the compression table from an element descriptor.
// For every shape function the number of assigned rows equals its declared
// nonzero-component count, and row numbers form the contiguous range
// [0, NRows()).
func BuildRowTable(el FiniteElement) *RowTable {
	var (
		nDofs = el.NDofsPerCell()
		nComp = el.NComponents()
	)
	t := &RowTable{
		nComponents: nComp,
		rows:        make([]int32, nDofs*nComp),
	}
	for i := range t.rows {
		t.rows[i] = -1
	}
	row := 0
	for i := 0; i < nDofs; i++ {
		nth := 0
		for c := 0; c < nComp; c++ {
			if el.NonzeroComponents(i)[c] {
				t.rows[i*nComp+c] = int32(row + nth)
				nth++
			}
		}
		row += el.NNonzeroComponents(i)
	}
	t.nRows = row
	return t
}

// Row returns the storage row of (shape function i, component c) and
// whether that pair is structurally nonzero at all.
func (t *RowTable) Row(i, c int) (row int, ok bool) {
	r := t.rows[i*t.nComponents+c]
	return int(r), r >= 0
}

// NRows is the total number of (shape function, nonzero component) pairs,
// i.e. the height of every shape data table.
func (t *RowTable) NRows() int {
	return t.nRows
}
