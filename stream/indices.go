package stream

import (
	"math"

	"github.com/arloliu/factosave/errs"
)

// MaxIndexRun is the longest run of consecutive indices stored as one entry.
const MaxIndexRun = 100

// ReadCompactedIndices reads a compacted sorted index list.
//
// Layout: a size-optimized count of indices, then one entry per run. An entry
// starts with a size-optimized head h; delta = h>>1 is the gap from the last
// index of the previous run (from 0 for the first run). If h is odd the run is
// a single index. If h is even a size-optimized (length-1) follows and the run
// covers length consecutive indices, 2 <= length <= MaxIndexRun.
func (r *Reader) ReadCompactedIndices() ([]uint32, error) {
	start := r.Offset()
	count, err := r.ReadSizeOptimizedU32()
	if err != nil {
		return nil, err
	}
	// each entry takes at least one byte and covers at most MaxIndexRun indices
	if int64(count) > int64(r.Remaining())*MaxIndexRun {
		return nil, errs.New(start, errs.ErrShortBuffer, "%d indices in %d bytes", count, r.Remaining())
	}

	out := make([]uint32, 0, min(int(count), 1<<16))
	var (
		prev    uint64
		lastRun int
	)
	for len(out) < int(count) {
		entry := r.Offset()
		head, err := r.ReadSizeOptimizedU32()
		if err != nil {
			return nil, err
		}
		delta := uint64(head >> 1)

		if len(out) > 0 {
			if delta == 0 {
				return nil, errs.New(entry, errs.ErrNotAscending, "repeated index %d", prev)
			}
			if delta == 1 && lastRun < MaxIndexRun {
				return nil, errs.New(entry, errs.ErrNonCanonical, "run of %d continued by a separate entry", lastRun)
			}
		}

		first := prev + delta
		length := 1
		if head&1 == 0 {
			extra, err := r.ReadSizeOptimizedU32()
			if err != nil {
				return nil, err
			}
			length = int(extra) + 1
			if length < 2 || length > MaxIndexRun {
				return nil, errs.New(entry, errs.ErrNonCanonical, "run length %d", length)
			}
		}

		last := first + uint64(length) - 1
		if last > math.MaxUint32 {
			return nil, errs.New(entry, errs.ErrValueOutOfRange, "index %d exceeds u32", last)
		}
		if len(out)+length > int(count) {
			return nil, errs.New(entry, errs.ErrValueOutOfRange, "run of %d overflows count %d", length, count)
		}

		for i := range length {
			out = append(out, uint32(first)+uint32(i)) //nolint:gosec
		}
		prev = last
		lastRun = length
	}

	return out, nil
}

// WriteCompactedIndices writes a strictly ascending index list in compacted
// form. It returns errs.ErrNotAscending if indices is not strictly ascending
// and errs.ErrValueOutOfRange if a gap does not fit in 31 bits.
func (w *Writer) WriteCompactedIndices(indices []uint32) error {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return errs.New(w.Offset(), errs.ErrNotAscending, "index %d at position %d follows %d", indices[i], i, indices[i-1])
		}
	}
	if len(indices) > 0 && indices[0] > math.MaxUint32>>1 {
		return errs.New(w.Offset(), errs.ErrValueOutOfRange, "first index %d needs a 32-bit gap", indices[0])
	}
	for i := 1; i < len(indices); i++ {
		if indices[i]-indices[i-1] > math.MaxUint32>>1 {
			return errs.New(w.Offset(), errs.ErrValueOutOfRange, "gap %d needs 32 bits", indices[i]-indices[i-1])
		}
	}

	w.WriteSizeOptimizedU32(uint32(len(indices))) //nolint:gosec

	var prev uint32
	for i := 0; i < len(indices); {
		j := i + 1
		for j < len(indices) && indices[j] == indices[j-1]+1 && j-i < MaxIndexRun {
			j++
		}

		delta := indices[i] - prev
		if length := j - i; length == 1 {
			w.WriteSizeOptimizedU32(delta<<1 | 1)
		} else {
			w.WriteSizeOptimizedU32(delta << 1)
			w.WriteSizeOptimizedU32(uint32(length - 1)) //nolint:gosec
		}

		prev = indices[j-1]
		i = j
	}

	return nil
}
