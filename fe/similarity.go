package fe

import (
	"runtime"
	"sync/atomic"
)

// CellSimilarity classifies how much of the previous cell's cached
// geometric data can be reused for the cell currently being bound.
type CellSimilarity uint8

const (
	// SimilarityNone - no reuse, all geometric data is recomputed.
	SimilarityNone CellSimilarity = iota
	// SimilarityTranslation - the new cell is a pure translate of the
	// previous one; Jacobians, their inverses and JxW carry over.
	SimilarityTranslation
	// SimilarityInvertedTranslation refines translation for manifolds
	// embedded in a higher-dimensional space whose surface orientation
	// flipped between the two cells.
	SimilarityInvertedTranslation
	// SimilarityInvalidNextCell is set by a Mapping whose internal state
	// was modified during the last fill and must not be reused.
	SimilarityInvalidNextCell
)

func (s CellSimilarity) String() string {
	switch s {
	case SimilarityNone:
		return "none"
	case SimilarityTranslation:
		return "translation"
	case SimilarityInvertedTranslation:
		return "inverted_translation"
	case SimilarityInvalidNextCell:
		return "invalid_next_cell"
	}
	return "unknown"
}

// Cell-similarity detection is sensitive to the order in which cells are
// visited: cached floating-point data from one cell is reused on the next,
// so dynamic scheduling across workers would make roundoff differ between
// runs. The optimization is therefore disabled outright whenever more than
// one worker is configured, trading speed for reproducibility.
var maxWorkers int64

func init() {
	atomic.StoreInt64(&maxWorkers, int64(runtime.GOMAXPROCS(0)))
}

// MaxWorkers reports the worker count used to decide whether similarity
// detection is safe.
func MaxWorkers() int {
	return int(atomic.LoadInt64(&maxWorkers))
}

// SetMaxWorkers declares how many workers run evaluation contexts
// concurrently. With n == 1 consecutive-cell similarity detection is
// enabled; with n > 1 it is disabled for reproducibility.
func SetMaxWorkers(n int) {
	if n < 1 {
		panic("fe: SetMaxWorkers requires n >= 1")
	}
	atomic.StoreInt64(&maxWorkers, int64(n))
}
