package dsp

// VP8L spatial predictors. Pixels are packed ARGB values.
//
// Convention: top is the previous row sliced so that
//   - top[0] = top-left pixel (TL)
//   - top[1] = top pixel (T, directly above current)
//   - top[2] = top-right pixel (TR)
//
// Rows are contiguous, so for the last pixel of a row top[2] is the first
// pixel of the current row.

// LosslessPredFunc is the signature for VP8L spatial predictors.
type LosslessPredFunc func(left uint32, top []uint32) uint32

// LosslessPredictors holds the predictors for modes 0-13. Modes 14 and 15
// cannot be signalled meaningfully and behave like mode 0.
var LosslessPredictors = [16]LosslessPredFunc{
	predBlack, predL, predT, predTR, predTL,
	predAvgLTRT, predAvgLTL, predAvgLT, predAvgTLT, predAvgTTR,
	predAvgLTLTTR, predSelect, predAddSubFull, predAddSubHalf,
	predBlack, predBlack,
}

// ARGBBlack is the prediction for the first pixel of an image.
const ARGBBlack = 0xff000000

// AddPixels adds two ARGB pixels per component, modulo 256.
func AddPixels(a, b uint32) uint32 {
	ag := (a & 0xff00ff00) + (b & 0xff00ff00)
	rb := (a & 0x00ff00ff) + (b & 0x00ff00ff)
	return (ag & 0xff00ff00) | (rb & 0x00ff00ff)
}

// Average2 is the per-component average of two pixels, rounded down.
func Average2(a, b uint32) uint32 {
	return (((a ^ b) & 0xfefefefe) >> 1) + (a & b)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampComponent(v int32) uint32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint32(v)
}

func component(p uint32, shift uint) int32 {
	return int32((p >> shift) & 0xff)
}

// Select returns t or l, whichever is closer to the gradient estimate
// l + t - tl, summed over the four components.
func Select(l, t, tl uint32) uint32 {
	var pl, pt int32
	for shift := uint(0); shift < 32; shift += 8 {
		pl += abs32(component(t, shift) - component(tl, shift))
		pt += abs32(component(l, shift) - component(tl, shift))
	}
	if pl < pt {
		return l
	}
	return t
}

// ClampedAddSubtractFull computes l + t - tl per component, clamped.
func ClampedAddSubtractFull(l, t, tl uint32) uint32 {
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		out |= clampComponent(component(l, shift)+component(t, shift)-component(tl, shift)) << shift
	}
	return out
}

// ClampedAddSubtractHalf computes a + (a - tl) / 2 per component, clamped,
// where a is the average of l and t.
func ClampedAddSubtractHalf(l, t, tl uint32) uint32 {
	avg := Average2(l, t)
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		a := component(avg, shift)
		out |= clampComponent(a+(a-component(tl, shift))/2) << shift
	}
	return out
}

func predBlack(uint32, []uint32) uint32 { return ARGBBlack }
func predL(left uint32, _ []uint32) uint32 { return left }
func predT(_ uint32, top []uint32) uint32 { return top[1] }
func predTR(_ uint32, top []uint32) uint32 { return top[2] }
func predTL(_ uint32, top []uint32) uint32 { return top[0] }
func predAvgLT(l uint32, top []uint32) uint32 { return Average2(l, top[1]) }
func predAvgLTL(l uint32, top []uint32) uint32 { return Average2(l, top[0]) }
func predAvgTLT(_ uint32, top []uint32) uint32 { return Average2(top[0], top[1]) }
func predAvgTTR(_ uint32, top []uint32) uint32 { return Average2(top[1], top[2]) }

func predAvgLTRT(l uint32, top []uint32) uint32 {
	return Average2(Average2(l, top[2]), top[1])
}

func predAvgLTLTTR(l uint32, top []uint32) uint32 {
	return Average2(Average2(l, top[0]), Average2(top[1], top[2]))
}

func predSelect(l uint32, top []uint32) uint32 {
	return Select(l, top[1], top[0])
}

func predAddSubFull(l uint32, top []uint32) uint32 {
	return ClampedAddSubtractFull(l, top[1], top[0])
}

func predAddSubHalf(l uint32, top []uint32) uint32 {
	return ClampedAddSubtractHalf(l, top[1], top[0])
}
