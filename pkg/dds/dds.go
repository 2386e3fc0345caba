// Package dds builds and parses the DDS+DX10 texture header bigblob wraps
// around a decoded BC7 payload, grounded on
// original_source/src/dds.rs's DdsHeader/PixelFormat/Dx10Header writers.
package dds

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/goopsie/bigblob/pkg/bberr"
)

const (
	magic           = "DDS "
	headerSize      = 124
	pixelFormatSize = 32
	fourCC          = "DX10"

	formatBC7UNorm = 98

	headerFlags = 0x1 | 0x2 | 0x4 | 0x1000 | 0x2_0000 | 0x8_0000
	headerCaps  = 0x8 | 0x40_0000 | 0x1000
	pfFlags     = 0x4
)

// ResourceDimension mirrors the DX10 header's resource_dimension field.
type ResourceDimension uint32

const (
	ResourceDimensionTexture1D ResourceDimension = 2
	ResourceDimensionTexture2D ResourceDimension = 3
	ResourceDimensionTexture3D ResourceDimension = 4
)

// AlphaMode mirrors the DX10 header's alpha_mode field.
type AlphaMode uint32

const (
	AlphaModeUnknown       AlphaMode = 0
	AlphaModeStraight      AlphaMode = 1
	AlphaModePremultiplied AlphaMode = 2
	AlphaModeOpaque        AlphaMode = 3
	AlphaModeCustom        AlphaMode = 4
)

// Header is the decoded shape of a DDS+DX10 header bigblob cares about: a
// single BC7 2D texture with no cubemap/volume/array faces.
type Header struct {
	Width, Height      uint32
	MipmapCount        uint32
	PitchOrLinearSize  uint32
	ResourceDimension  ResourceDimension
	AlphaMode          AlphaMode
}

// New builds the canonical single-face BC7 2D texture header for the given
// dimensions, matching original_source's create_dds_header.
func New(width, height uint32) Header {
	mips := bits.Len32(width)
	if h := bits.Len32(height); h > mips {
		mips = h
	}
	return Header{
		Width:             width,
		Height:            height,
		MipmapCount:       uint32(mips),
		PitchOrLinearSize: alignUp4(width) * alignUp4(height),
		ResourceDimension: ResourceDimensionTexture2D,
		AlphaMode:         AlphaModeStraight,
	}
}

func alignUp4(v uint32) uint32 {
	return (v + 3) &^ 3
}

// Write emits the 148-byte DDS+DX10 header (128-byte DDS header plus the
// 20-byte DX10 extension).
func (h Header) Write(w io.Writer) error {
	buf := make([]byte, 0, 128)
	put32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}

	buf = append(buf, magic...)
	put32(headerSize)
	put32(headerFlags)
	put32(h.Height)
	put32(h.Width)
	put32(h.PitchOrLinearSize)
	put32(0) // depth
	put32(h.MipmapCount)
	for i := 0; i < 11; i++ {
		put32(0) // reserved1
	}

	put32(pixelFormatSize)
	put32(pfFlags)
	buf = append(buf, fourCC...)
	put32(0) // rgb bit count
	put32(0) // r mask
	put32(0) // g mask
	put32(0) // b mask
	put32(0) // a mask

	put32(headerCaps)
	put32(0) // caps2
	put32(0) // caps3
	put32(0) // caps4
	put32(0) // reserved2

	put32(formatBC7UNorm)
	put32(uint32(h.ResourceDimension))
	put32(0) // misc flag
	put32(1) // array size
	put32(uint32(h.AlphaMode))

	_, err := w.Write(buf)
	return bberr.Wrap(bberr.KindIO, "write dds header", err)
}

// Parse reads and validates a 148-byte DDS+DX10 header (128-byte DDS header
// plus the 20-byte DX10 extension), rejecting a wrong magic, header size,
// pixel format size or FourCC, a non-BC7 format, a resource dimension other
// than Texture1D/2D/3D, or an unrecognized alpha mode. Cubemap flags and the
// array size are not checked.
func Parse(r io.Reader) (Header, error) {
	buf := make([]byte, 128+20)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, bberr.Wrap(bberr.KindIO, "read dds header", err)
	}

	if string(buf[0:4]) != magic {
		return Header{}, bberr.New(bberr.KindWrongMagic, "dds magic")
	}
	if binary.LittleEndian.Uint32(buf[4:8]) != headerSize {
		return Header{}, bberr.New(bberr.KindWrongHeaderSize, "dds header size")
	}

	height := binary.LittleEndian.Uint32(buf[12:16])
	width := binary.LittleEndian.Uint32(buf[16:20])
	pitch := binary.LittleEndian.Uint32(buf[20:24])
	mipmapCount := binary.LittleEndian.Uint32(buf[28:32])

	pf := buf[76:104]
	if binary.LittleEndian.Uint32(pf[0:4]) != pixelFormatSize {
		return Header{}, bberr.New(bberr.KindWrongPixelFormatSize, "dds pixel format size")
	}
	if string(pf[8:12]) != fourCC {
		return Header{}, bberr.New(bberr.KindUnknownFourCC, "dds pixel format fourcc")
	}

	dx10 := buf[128:148]
	if binary.LittleEndian.Uint32(dx10[0:4]) != formatBC7UNorm {
		return Header{}, bberr.New(bberr.KindUnknownFormat, "dx10 dxgi format")
	}
	resDim := ResourceDimension(binary.LittleEndian.Uint32(dx10[4:8]))
	switch resDim {
	case ResourceDimensionTexture1D, ResourceDimensionTexture2D, ResourceDimensionTexture3D:
	default:
		return Header{}, bberr.New(bberr.KindUnknownResourceDimension, "dx10 resource dimension")
	}
	alphaMode := AlphaMode(binary.LittleEndian.Uint32(dx10[16:20]))
	switch alphaMode {
	case AlphaModeUnknown, AlphaModeStraight, AlphaModePremultiplied, AlphaModeOpaque, AlphaModeCustom:
	default:
		return Header{}, bberr.New(bberr.KindUnknownAlphaMode, "dx10 alpha mode")
	}

	return Header{
		Width:             width,
		Height:            height,
		MipmapCount:       mipmapCount,
		PitchOrLinearSize: pitch,
		ResourceDimension: resDim,
		AlphaMode:         alphaMode,
	}, nil
}
