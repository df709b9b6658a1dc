//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/mockup/geom"
)

// Uniform block sizes. Both are multiples of 16 bytes as required for
// uniform buffers.
const (
	warpParamsSize  = 96
	blendParamsSize = 32
)

// warpParams mirrors the Params struct of warp.wgsl.
type warpParams struct {
	DstWidth, DstHeight uint32
	SrcWidth, SrcHeight uint32
	X0, Y0, X1, Y1      uint32 // destination bounding box, exclusive max
	Size                geom.Size
	Opacity             float32
	Nearest             bool
	Inverse             geom.Homography // destination -> nominal source
}

func (p warpParams) bytes() []byte {
	buf := make([]byte, warpParamsSize)
	le := binary.LittleEndian
	for i, v := range []uint32{p.DstWidth, p.DstHeight, p.SrcWidth, p.SrcHeight, p.X0, p.Y0, p.X1, p.Y1} {
		le.PutUint32(buf[i*4:], v)
	}
	nearest := float32(0)
	if p.Nearest {
		nearest = 1
	}
	putF32(buf[32:], float32(p.Size.Width))
	putF32(buf[36:], float32(p.Size.Height))
	putF32(buf[40:], p.Opacity)
	putF32(buf[44:], nearest)
	for row := 0; row < 3; row++ {
		off := 48 + row*16
		putF32(buf[off:], float32(p.Inverse[row*3]))
		putF32(buf[off+4:], float32(p.Inverse[row*3+1]))
		putF32(buf[off+8:], float32(p.Inverse[row*3+2]))
	}
	return buf
}

// blendParams mirrors the Params struct of blend.wgsl.
type blendParams struct {
	Width, Height uint32
	Mode          uint32
	Opacity       float32
}

func (p blendParams) bytes() []byte {
	buf := make([]byte, blendParamsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], p.Width)
	le.PutUint32(buf[4:], p.Height)
	le.PutUint32(buf[8:], p.Mode)
	putF32(buf[16:], p.Opacity)
	return buf
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

// packPixels converts premultiplied RGBA bytes with the given stride into
// tightly packed little-endian u32 words.
func packPixels(data []uint8, width, height, stride int) []byte {
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+width*4]
		for x := 0; x < width; x++ {
			i := x * 4
			packed := uint32(row[i]) | uint32(row[i+1])<<8 | uint32(row[i+2])<<16 | uint32(row[i+3])<<24
			binary.LittleEndian.PutUint32(out[(y*width+x)*4:], packed)
		}
	}
	return out
}

// unpackPixels is the inverse of packPixels.
func unpackPixels(packed []byte, dst []uint8, width, height, stride int) {
	for y := 0; y < height; y++ {
		row := dst[y*stride : y*stride+width*4]
		for x := 0; x < width; x++ {
			val := binary.LittleEndian.Uint32(packed[(y*width+x)*4:])
			i := x * 4
			row[i+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
			row[i+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
			row[i+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
			row[i+3] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
		}
	}
}
