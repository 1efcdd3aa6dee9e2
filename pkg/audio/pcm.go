package audio

import "math"

// FloatToPCM16 converts normalized float32 samples into 16-bit PCM.
// Values are scaled by 32767 and truncated, clamping out of range input.
func FloatToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32767
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// PCM16ToFloat converts 16-bit PCM back into normalized float32 samples.
func PCM16ToFloat(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32767
	}
	return out
}

// PCM16Bytes packs int16 samples little endian for wire transport.
func PCM16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(uint16(s))
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

// BytesToFloat32 reinterprets little endian IEEE 754 bytes as float32
// samples. Trailing bytes that do not fill a sample are ignored.
func BytesToFloat32(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(data[i*4]) |
			uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 |
			uint32(data[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}
