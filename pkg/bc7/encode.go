package bc7

import "github.com/goopsie/bigblob/internal/bitio"

// field is one fixed-width value in a block's bitstream, in the same
// top-to-bottom order Decode reads them.
type field struct {
	width uint
	value uint64
}

// assemble packs fields (given in read order) into a 128-bit block. Writer's
// Put accumulates MSB-first, so fields are injected in reverse so that the
// first field in the slice is the first one Decode's Reader extracts.
func assemble(fields []field) [16]byte {
	var w bitio.Writer
	for i := len(fields) - 1; i >= 0; i-- {
		w.Put(fields[i].width, fields[i].value)
	}
	return w.Block()
}

// EncodeBlock implements the placeholder software encoder: it does not
// search for a perceptually close BC7 encoding, only a structurally valid
// one, matching spec.md §4.2's "placeholder encoder" contract. All-transparent
// blocks collapse to the canonical mode 5 zero block; everything else becomes
// a flat mode 6 block built from the block's average color and alpha. Both
// endpoints and every index are identical, so the block decodes to a single
// flat color: alpha round-trips exactly and each color channel lands within
// one step of the average.
func EncodeBlock(b Block) [16]byte {
	if allTransparent(b) {
		return encodeZeroMode5()
	}
	return encodeFlatMode6(b)
}

func allTransparent(b Block) bool {
	for _, px := range b {
		if px.A != 0 {
			return false
		}
	}
	return true
}

// encodeZeroMode5 emits the canonical all-zero mode 5 block: fully
// transparent black with a zero rotation and zero index selection, used as the
// placeholder for blocks whose source pixels are entirely transparent.
func encodeZeroMode5() [16]byte {
	const mode = 5
	layout := modeLayouts[mode]
	fields := []field{{width: uint(mode + 1), value: 1 << uint(mode)}}
	fields = append(fields, field{width: uint(layout.RotationBits), value: 0})
	numEndpoints := layout.SubsetCount * 2
	for i := 0; i < numEndpoints; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: 0})
	}
	for i := 0; i < numEndpoints; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: 0})
	}
	for i := 0; i < numEndpoints; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: 0})
	}
	for i := 0; i < numEndpoints; i++ {
		fields = append(fields, field{width: uint(layout.AlphaBits), value: 0})
	}
	fields = append(fields, indexFields(mode, 0, layout.IndexBits, 0)...)
	fields = append(fields, indexFields(mode, 0, layout.Index2Bits, 0)...)
	return assemble(fields)
}

// encodeFlatMode6 packs a single flat color into mode 6 (7-bit color and
// alpha endpoints plus one p-bit per endpoint, no partitioning), with equal
// endpoints and every index zero. The p-bit is shared by all four channels
// and is taken from the average alpha, so alpha decodes exactly and R, G and
// B decode to within one of the average.
func encodeFlatMode6(b Block) [16]byte {
	const mode = 6
	layout := modeLayouts[mode]

	var sumR, sumG, sumB, sumA uint32
	for _, px := range b {
		sumR += uint32(px.R)
		sumG += uint32(px.G)
		sumB += uint32(px.B)
		sumA += uint32(px.A)
	}
	avgR := uint8(sumR / 16)
	avgG := uint8(sumG / 16)
	avgB := uint8(sumB / 16)
	avgA := uint8(sumA / 16)

	r7 := avgR >> 1
	g7 := avgG >> 1
	b7 := avgB >> 1
	a7 := avgA >> 1
	pbit := uint64(avgA & 1)

	fields := []field{{width: uint(mode + 1), value: 1 << uint(mode)}}
	for i := 0; i < 2; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: uint64(r7)})
	}
	for i := 0; i < 2; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: uint64(g7)})
	}
	for i := 0; i < 2; i++ {
		fields = append(fields, field{width: uint(layout.ColorBits), value: uint64(b7)})
	}
	for i := 0; i < 2; i++ {
		fields = append(fields, field{width: uint(layout.AlphaBits), value: uint64(a7)})
	}
	fields = append(fields, field{width: 1, value: pbit}, field{width: 1, value: pbit})
	fields = append(fields, indexFields(mode, 0, layout.IndexBits, 0)...)
	return assemble(fields)
}

// indexFields builds 16 constant-value index fields for a single-subset
// mode, narrowing the anchor texel (always texel 0) by one bit.
func indexFields(mode int, partition uint8, width int, value uint64) []field {
	if width == 0 {
		return nil
	}
	out := make([]field, 16)
	for t := 0; t < 16; t++ {
		w := width
		if t == 0 {
			w--
		}
		out[t] = field{width: uint(w), value: value}
	}
	return out
}
