package servo

// Scale linearly remaps value from [inMin,inMax] to [outMin,outMax].
// The intermediate product is widened to 64 bits and the division truncates
// toward zero, so results are bit-exact with the reference controller
// firmware. inMax must be greater than inMin; callers guarantee this.
func Scale(inMin, inMax, outMin, outMax, value int) int {
	scaled := int64(value-inMin) * int64(outMax-outMin)
	scaled /= int64(inMax - inMin)
	return int(scaled) + outMin
}
