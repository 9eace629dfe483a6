package stress

import (
	"errors"
	"fmt"
	"time"

	"github.com/Workiva/go-datastructures/bitarray"
	"github.com/valyala/bytebufferpool"
)

var (
	// ErrLostUpdate means the cell did not end at Workers*Increments or some
	// value was never committed.
	ErrLostUpdate = errors.New("lost update")

	// ErrDuplicateCommit means two increments committed the same value.
	ErrDuplicateCommit = errors.New("duplicate commit")
)

// Result summarizes a stress run.
type Result struct {
	Width      Width
	Workers    int
	Increments int

	// Expected is Workers*Increments, Final is the cell value after the run.
	Expected int64
	Final    int64

	// Commits is the number of values the tasks reported.
	Commits int64
	// Conflicts counts exchanges that lost to another writer.
	Conflicts int64
	// Duplicates counts values reported more than once or out of 1..Expected.
	Duplicates int64
	// Missing counts values in 1..Expected nobody reported.
	Missing int64

	Elapsed time.Duration
}

// Err returns nil when the run observed no lost or duplicated update.
func (r *Result) Err() error {
	if r.Duplicates > 0 {
		return fmt.Errorf("%w: %d values", ErrDuplicateCommit, r.Duplicates)
	}
	if r.Final != r.Expected || r.Missing > 0 {
		return fmt.Errorf("%w: final %d, expected %d, %d values missing",
			ErrLostUpdate, r.Final, r.Expected, r.Missing)
	}
	return nil
}

// verify marks every committed value in a bitmap sized for 1..Expected.
func (r *Result) verify(values []interface{}) error {
	seen := bitarray.NewBitArray(uint64(r.Expected) + 1)
	var unique int64
	for _, item := range values {
		v, ok := item.(int64)
		if !ok || v < 1 || v > r.Expected {
			r.Duplicates++
			continue
		}
		set, err := seen.GetBit(uint64(v))
		if err != nil {
			return fmt.Errorf("verify commit %d: %w", v, err)
		}
		if set {
			r.Duplicates++
			continue
		}
		if err := seen.SetBit(uint64(v)); err != nil {
			return fmt.Errorf("verify commit %d: %w", v, err)
		}
		unique++
	}
	r.Commits = int64(len(values))
	r.Missing = r.Expected - unique
	return nil
}

// Report renders the result as a short human readable block.
func (r *Result) Report() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "width:      %s\n", r.Width)
	fmt.Fprintf(buf, "tasks:      %d x %d increments\n", r.Workers, r.Increments)
	fmt.Fprintf(buf, "final:      %d (expected %d)\n", r.Final, r.Expected)
	fmt.Fprintf(buf, "commits:    %d (%d duplicate, %d missing)\n", r.Commits, r.Duplicates, r.Missing)
	fmt.Fprintf(buf, "conflicts:  %d\n", r.Conflicts)
	fmt.Fprintf(buf, "elapsed:    %s\n", r.Elapsed)
	if r.Elapsed > 0 {
		fmt.Fprintf(buf, "throughput: %.0f commits/s\n", float64(r.Commits)/r.Elapsed.Seconds())
	}
	if err := r.Err(); err != nil {
		fmt.Fprintf(buf, "status:     FAIL (%v)\n", err)
	} else {
		_, _ = buf.WriteString("status:     OK\n")
	}
	return buf.String()
}
