package dsp

import "math"

// Lookup table sizes
const (
	sinLUTSize  = 8192
	sinLUTMask  = sinLUTSize - 1
	tanhLUTSize = 4096
	tanhLUTMin  = float32(-4.0)
	tanhLUTMax  = float32(4.0)
)

const (
	sinLUTScale  = float32(sinLUTSize) / (2 * math.Pi)
	tanhLUTScale = float32(tanhLUTSize-1) / (tanhLUTMax - tanhLUTMin)
)

var (
	sinLUT  [sinLUTSize]float32
	tanhLUT [tanhLUTSize]float32
)

func init() {
	for i := 0; i < sinLUTSize; i++ {
		phase := float64(i) * 2 * math.Pi / float64(sinLUTSize)
		sinLUT[i] = float32(math.Sin(phase))
	}
	for i := 0; i < tanhLUTSize; i++ {
		x := float64(tanhLUTMin) + float64(i)*float64(tanhLUTMax-tanhLUTMin)/float64(tanhLUTSize-1)
		tanhLUT[i] = float32(math.Tanh(x))
	}
}

// FastSin returns sin(phase) for phase in radians using a lookup table with
// linear interpolation. Any phase value is accepted; it is wrapped into
// [0, 2pi).
func FastSin(phase float32) float32 {
	idx := phase * sinLUTScale
	i := int(idx)
	frac := idx - float32(i)
	i &= sinLUTMask
	if frac < 0 {
		frac += 1
		i = (i - 1) & sinLUTMask
	}
	j := (i + 1) & sinLUTMask
	return sinLUT[i] + frac*(sinLUT[j]-sinLUT[i])
}

// FastCos returns cos(phase) via the sine table.
func FastCos(phase float32) float32 {
	return FastSin(phase + math.Pi/2)
}

// FastTanh returns tanh(x) using a lookup table over [-4, 4] with linear
// interpolation; values outside the table saturate to +/-1.
func FastTanh(x float32) float32 {
	if x <= tanhLUTMin {
		return -1
	}
	if x >= tanhLUTMax {
		return 1
	}
	idx := (x - tanhLUTMin) * tanhLUTScale
	i := int(idx)
	frac := idx - float32(i)
	if i >= tanhLUTSize-1 {
		return tanhLUT[tanhLUTSize-1]
	}
	return tanhLUT[i] + frac*(tanhLUT[i+1]-tanhLUT[i])
}
