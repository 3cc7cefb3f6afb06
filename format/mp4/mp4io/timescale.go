package mp4io

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// toMediaTime converts a wall clock offset into units of a timescale, rounding down.
func toMediaTime(start time.Duration, timescale uint32) (uint64, error) {
	if start < 0 {
		return 0, fmt.Errorf("%w: negative cut time %s", ErrOutOfRange, start)
	}
	return rescale(uint64(start), uint64(timescale), uint64(time.Second))
}

// rescale returns v*to/from rounded down. The product is kept in 128 bits so a large
// numerator does not lose precision before the division.
func rescale(v, to, from uint64) (uint64, error) {
	if from == 0 {
		return 0, fmt.Errorf("%w: zero timescale", ErrOutOfRange)
	}
	hi, lo := bits.Mul64(v, to)
	if hi >= from {
		return 0, fmt.Errorf("%w: %d*%d/%d overflows 64 bits", ErrOutOfRange, v, to, from)
	}
	q, _ := bits.Div64(hi, lo, from)
	return q, nil
}

// fromMediaTime converts units of a timescale into a wall clock offset, rounding up so
// that toMediaTime maps the result back to v for any timescale up to 1GHz.
func fromMediaTime(v uint64, timescale uint32) (time.Duration, error) {
	d, err := rescaleUp(v, uint64(time.Second), uint64(timescale))
	if err != nil {
		return 0, err
	}
	if d > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d/%d s does not fit a duration", ErrOutOfRange, v, timescale)
	}
	return time.Duration(d), nil
}

// rescaleUp is rescale rounded up.
func rescaleUp(v, to, from uint64) (uint64, error) {
	if from == 0 {
		return 0, fmt.Errorf("%w: zero timescale", ErrOutOfRange)
	}
	hi, lo := bits.Mul64(v, to)
	if hi >= from {
		return 0, fmt.Errorf("%w: %d*%d/%d overflows 64 bits", ErrOutOfRange, v, to, from)
	}
	q, r := bits.Div64(hi, lo, from)
	if r != 0 {
		if q == math.MaxUint64 {
			return 0, fmt.Errorf("%w: %d*%d/%d overflows 64 bits", ErrOutOfRange, v, to, from)
		}
		q++
	}
	return q, nil
}
