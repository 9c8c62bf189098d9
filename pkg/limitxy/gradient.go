package limitxy

import "math"

// pyRound rounds half to even, matching the slicer scripting host.
func pyRound(v float64) int {
	return int(math.RoundToEven(v))
}

// roundGranule rounds v to the nearest multiple of AccelGranularity, never
// going below MinAccelLimit.
func roundGranule(v float64) int {
	r := pyRound(float64(pyRound(v/AccelGranularity)) * AccelGranularity)
	if r < MinAccelLimit {
		return MinAccelLimit
	}
	return r
}

// taperAxis returns the per-block step and the limit values for one axis
// tapering from old down to limit over spread blocks.
//
// The first value is already one step below old. Each later value drops by
// step with the running value clamped at limit, and every emitted value is
// rounded to the nearest granule, so a limit off the granule may end up to
// half a granule below the request. A limit at or above old is applied flat.
func taperAxis(old float64, limit, spread int) (step int, values []int) {
	step = pyRound((old - float64(limit)) / float64(spread))
	if step < 0 {
		step = 0
	}

	values = make([]int, spread)
	cur := roundGranule(old - float64(step))
	if old <= float64(limit) {
		cur = limit
	}
	values[0] = roundGranule(float64(cur))
	for i := 1; i < spread; i++ {
		cur -= step
		if cur < limit {
			cur = limit
		}
		values[i] = roundGranule(float64(cur))
	}
	return step, values
}

// Taper computes the gradient limits for both axes, one pair per block.
func Taper(old float64, limit AxisPair, spread int) (step AxisPair, values []AxisPair) {
	var xs, ys []int
	step.X, xs = taperAxis(old, limit.X, spread)
	step.Y, ys = taperAxis(old, limit.Y, spread)
	values = make([]AxisPair, spread)
	for i := range values {
		values[i] = AxisPair{X: xs[i], Y: ys[i]}
	}
	return step, values
}
