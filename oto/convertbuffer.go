package oto

import (
	"encoding/binary"
	"math"

	"github.com/vsariola/polysynth"
)

// bufferTo16BitLE appends the frames of buffer to dst as interleaved 16-bit
// little-endian integers, clipping the samples to [-1, 1].
func bufferTo16BitLE(buffer polysynth.AudioBuffer, dst []byte) []byte {
	for _, frame := range buffer {
		for _, v := range frame {
			var uv int16
			switch {
			case v < -1:
				uv = -math.MaxInt16
			case v > 1:
				uv = math.MaxInt16
			default:
				uv = int16(v * math.MaxInt16)
			}
			dst = binary.LittleEndian.AppendUint16(dst, uint16(uv))
		}
	}
	return dst
}
