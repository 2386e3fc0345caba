package bc7

import (
	"encoding/binary"

	"github.com/goopsie/bigblob/internal/bitio"
)

// Decode unpacks one 128-bit BC7 block into 16 RGBA texels.
//
// Supplemented: anchor handling completeness. original_source left anchor
// reduction as a TODO for the multi-subset modes (0, 1, 2, 3, 7); this
// decoder implements the full anchor-aware index width for every mode,
// including the always-anchored texel 0 in the single-subset modes (4, 5,
// 6), since spec.md's round-trip invariants require it.
func Decode(data [16]byte) (Block, error) {
	lo := binary.LittleEndian.Uint64(data[0:8])
	hi := binary.LittleEndian.Uint64(data[8:16])

	mode := bitio.TrailingZeros128(lo, hi)
	if mode > 7 {
		// No mode bit set (or corrupt data past mode 7): original_source's
		// decode_bc7_block never errors here, it substitutes a fully
		// transparent tile and moves on.
		return Block{}, nil
	}

	r := bitio.NewReaderFromWords(lo, hi)
	r.Bits(uint(mode + 1)) // consume the unary mode prefix

	layout := modeLayouts[mode]
	numEndpoints := layout.SubsetCount * 2

	var partition uint8
	if layout.PartitionBits > 0 {
		partition = uint8(r.Bits(uint(layout.PartitionBits)))
	}

	var rotation int
	if layout.RotationBits > 0 {
		rotation = int(r.Bits(uint(layout.RotationBits)))
	}

	var indexSelect int
	if layout.HasIndexSelect {
		indexSelect = int(r.Bits(1))
	}

	red := make([]uint8, numEndpoints)
	grn := make([]uint8, numEndpoints)
	blu := make([]uint8, numEndpoints)
	for i := 0; i < numEndpoints; i++ {
		red[i] = uint8(r.Bits(uint(layout.ColorBits)))
	}
	for i := 0; i < numEndpoints; i++ {
		grn[i] = uint8(r.Bits(uint(layout.ColorBits)))
	}
	for i := 0; i < numEndpoints; i++ {
		blu[i] = uint8(r.Bits(uint(layout.ColorBits)))
	}

	var alp []uint8
	if layout.AlphaBits > 0 {
		alp = make([]uint8, numEndpoints)
		for i := 0; i < numEndpoints; i++ {
			alp[i] = uint8(r.Bits(uint(layout.AlphaBits)))
		}
	}

	pbitN := layout.pbitCount()
	pbits := make([]uint8, pbitN)
	for i := 0; i < pbitN; i++ {
		pbits[i] = uint8(r.Bits(1))
	}

	endpointPBit := func(endpoint int) (uint8, bool) {
		switch layout.PBits {
		case pbitShared:
			return pbits[endpoint/2], true
		case pbitUnique:
			return pbits[endpoint], true
		default:
			return 0, false
		}
	}

	expandedR := make([]uint8, numEndpoints)
	expandedG := make([]uint8, numEndpoints)
	expandedB := make([]uint8, numEndpoints)
	expandedA := make([]uint8, numEndpoints)
	for i := 0; i < numEndpoints; i++ {
		p, hasP := endpointPBit(i)
		expandedR[i] = expandEndpoint(red[i], p, hasP, layout.ColorBits)
		expandedG[i] = expandEndpoint(grn[i], p, hasP, layout.ColorBits)
		expandedB[i] = expandEndpoint(blu[i], p, hasP, layout.ColorBits)
		if alp != nil {
			expandedA[i] = expandEndpoint(alp[i], p, hasP, layout.AlphaBits)
		} else {
			expandedA[i] = 255
		}
	}

	array1 := readIndexArray(r, mode, partition, layout.IndexBits)
	var array2 []uint8
	if layout.Index2Bits > 0 {
		array2 = readIndexArray(r, mode, partition, layout.Index2Bits)
	}

	colorIdx, alphaIdx := array1, array2
	colorWidth, alphaWidth := layout.IndexBits, layout.Index2Bits
	if layout.HasIndexSelect && indexSelect == 1 {
		colorIdx, alphaIdx = array2, array1
		colorWidth, alphaWidth = layout.Index2Bits, layout.IndexBits
	}

	var block Block
	for t := 0; t < 16; t++ {
		subset := subsetOf(mode, partition, t)
		ep0, ep1 := int(subset)*2, int(subset)*2+1

		cw := weightFor(colorWidth, colorIdx[t])
		r8 := interpolate(expandedR[ep0], expandedR[ep1], cw)
		g8 := interpolate(expandedG[ep0], expandedG[ep1], cw)
		b8 := interpolate(expandedB[ep0], expandedB[ep1], cw)

		var a8 uint8
		switch {
		case layout.AlphaBits == 0:
			a8 = 255
		case alphaIdx != nil:
			aw := weightFor(alphaWidth, alphaIdx[t])
			a8 = interpolate(expandedA[ep0], expandedA[ep1], aw)
		default:
			a8 = interpolate(expandedA[ep0], expandedA[ep1], cw)
		}

		switch rotation {
		case 1:
			r8, a8 = a8, r8
		case 2:
			g8, a8 = a8, g8
		case 3:
			b8, a8 = a8, b8
		}

		block[t] = RGBA{R: r8, G: g8, B: b8, A: a8}
	}

	return block, nil
}

// readIndexArray reads 16 index values of the given nominal width, narrowing
// each subset's anchor texel by one bit per spec.md §4.2.
func readIndexArray(r *bitio.Reader, mode int, partition uint8, width int) []uint8 {
	out := make([]uint8, 16)
	for t := 0; t < 16; t++ {
		subset := subsetOf(mode, partition, t)
		w := width
		if isAnchor(mode, partition, subset, t) {
			w--
		}
		out[t] = uint8(r.Bits(uint(w)))
	}
	return out
}

func weightFor(width int, index uint8) uint8 {
	switch width {
	case 2:
		return Weights2[index]
	case 3:
		return Weights3[index]
	default:
		return Weights4[index]
	}
}
