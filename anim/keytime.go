package anim

// linear scan is used once the search window is this small
const keySearchLinearTail = 4

type keyTimes struct {
	times     []float32
	numKeys   int
	numFrames float32
}

func (kt keyTimes) at(i int) float32 {
	if kt.times != nil {
		return kt.times[i]
	}
	return float32(i) * kt.numFrames / float32(kt.numKeys)
}

// FindTimeKey locates the pair of keys bracketing frame and the interpolation
// fraction between them. times may be nil, then numKeys keys are treated as
// evenly spaced across [0, numFrames).
//
// Past the last key a looping clip wraps to key 0 with the fraction measured
// against the clip end; a clamped clip stays on the last key.
func FindTimeKey(times []float32, numKeys int, frame float32, numFrames int, loop bool) (x, y int, frac float32) {
	if times != nil {
		numKeys = len(times)
	}
	if numKeys <= 1 || frame == 0 {
		return 0, 0, 0
	}

	kt := keyTimes{times: times, numKeys: numKeys, numFrames: float32(numFrames)}
	if frame < kt.at(0) {
		return 0, 0, 0
	}

	low, high := 0, numKeys-1
	for high-low > keySearchLinearTail {
		mid := (low + high) / 2
		if frame < kt.at(mid) {
			high = mid - 1
		} else {
			low = mid
		}
	}
	x = low
	for x < high && kt.at(x+1) <= frame {
		x++
	}

	tx := kt.at(x)
	if tx == frame {
		return x, x, 0
	}

	y = x + 1
	if y >= numKeys {
		if !loop {
			return x, x, 0
		}
		span := kt.numFrames - tx
		if span <= 0 {
			return x, 0, 0
		}
		return x, 0, clamp01((frame - tx) / span)
	}
	return x, y, clamp01((frame - tx) / (kt.at(y) - tx))
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
