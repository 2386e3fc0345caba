// Package lz4x wraps the raw LZ4 block codec (no frame header) bigblob
// payloads use, matching spec.md §6.2/§6.3's Compress/Decompress
// collaborator interface.
package lz4x

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/goopsie/bigblob/pkg/bberr"
)

// Compress returns the raw LZ4 block encoding of data (no frame header).
func Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, bberr.Wrap(bberr.KindIO, "lz4 compress", err)
	}
	if n == 0 && len(data) > 0 {
		// CompressBlock reports n==0 when it can't shrink the input (e.g.
		// already-compressed sound blobs) rather than emitting a
		// literals-only block. Every Raw entry must still round-trip
		// through the same UncompressBlock call on read, so fall back to
		// a hand-built single-sequence block: a literals-only run is a
		// valid terminal LZ4 sequence (the format allows a block's last
		// sequence to carry no match part).
		return encodeLiteralsOnly(data), nil
	}
	return dst[:n], nil
}

// encodeLiteralsOnly builds a single-sequence LZ4 block containing nothing
// but literal bytes, decodable by lz4.UncompressBlock like any other block.
func encodeLiteralsOnly(data []byte) []byte {
	litLen := len(data)
	out := make([]byte, 0, litLen+litLen/255+2)

	tokenLit := litLen
	if tokenLit > 15 {
		tokenLit = 15
	}
	out = append(out, byte(tokenLit<<4))

	if litLen >= 15 {
		rem := litLen - 15
		for rem >= 255 {
			out = append(out, 255)
			rem -= 255
		}
		out = append(out, byte(rem))
	}
	out = append(out, data...)
	return out
}

// Decompress inflates a raw LZ4 block to exactly expectedLen bytes.
func Decompress(compressed []byte, expectedLen int) ([]byte, error) {
	dst := make([]byte, expectedLen)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, bberr.Wrap(bberr.KindLZ4Decompress, "lz4 decompress", err)
	}
	if n != expectedLen {
		return nil, bberr.Wrap(bberr.KindLZ4Decompress, "lz4 decompress",
			fmt.Errorf("got %d bytes, expected %d", n, expectedLen))
	}
	return dst, nil
}
