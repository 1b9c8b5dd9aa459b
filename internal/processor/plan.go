package processor

import "math"

// MaxSegments bounds the number of segments one source may be cut into.
const MaxSegments = 1 << 20

// Plan splits duration into consecutive segments of segmentLength seconds.
// The last segment holds the remainder and is never longer than
// segmentLength; an exact multiple produces no empty trailing segment.
// A remainder within rounding noise of zero (a billionth of a microsecond
// per second of duration) is treated as an exact multiple.
func Plan(duration, segmentLength float64) ([]SegmentSpec, error) {
	if !positive(duration) {
		return nil, &InvalidInputError{Field: "duration", Value: duration}
	}
	if !positive(segmentLength) {
		return nil, &InvalidInputError{Field: "segment length", Value: segmentLength}
	}

	q := math.Ceil(duration / segmentLength)
	if math.IsInf(q, 0) || math.IsNaN(q) || q > MaxSegments {
		return nil, &InvalidInputError{Field: "segment length", Value: segmentLength}
	}

	n := int(q)
	// duration/segmentLength can land a hair above an integer
	if n > 1 && duration-segmentLength*float64(n-1) <= duration*1e-12 {
		n--
	}

	plan := make([]SegmentSpec, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * segmentLength
		length := segmentLength
		if i == n-1 {
			length = math.Min(segmentLength, duration-start)
		}
		plan = append(plan, SegmentSpec{
			Index:  i + 1,
			Start:  start,
			Length: length,
		})
	}
	return plan, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
