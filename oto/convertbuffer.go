package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToLE converts a []float32 buffer to the little-endian byte
// layout oto's FormatFloat32LE players read. The converted bytes are
// appended to target, so passing a previous result resliced to zero length
// reuses its capacity.
func FloatBufferToLE(buff []float32, target []byte) []byte {
	for _, v := range buff {
		target = binary.LittleEndian.AppendUint32(target, math.Float32bits(v))
	}
	return target
}
