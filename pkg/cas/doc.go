// Package cas provides a strong compare-and-exchange over integer cells shared
// between goroutines.
//
// Each cell type (Int, Int32, Uint32, Int64, Uint64) can only be accessed
// through atomic methods, so a cell is never read or written non-atomically.
// The zero value of every cell holds 0 and is ready to use. Cells must not be
// copied after first use.
//
// Every operation is sequentially consistent. A failed exchange writes the
// value the cell actually held back into expected, so callers can recompute
// and retry without a separate load:
//
//	var next cas.Int
//	expected := next.Load()
//	for !cas.CompareAndSwapInt(&next, &expected, expected+1) {
//	}
//
// The retry loop and its policy belong to the caller. See pkg/counter for one.
package cas
