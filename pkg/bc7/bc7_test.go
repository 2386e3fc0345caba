package bc7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSubstitutesTransparentTileForInvalidMode(t *testing.T) {
	var data [16]byte // all-zero block: 128 trailing zeros, no mode bit set
	block, err := Decode(data)
	require.NoError(t, err)
	for _, px := range block {
		assert.Equal(t, RGBA{}, px)
	}
}

func TestEncodeDecodeRoundTripFlatColor(t *testing.T) {
	var b Block
	for i := range b {
		b[i] = RGBA{R: 200, G: 40, B: 90, A: 255}
	}
	packed := Encode(b)
	decoded, err := Decode(packed)
	require.NoError(t, err)
	for i, px := range decoded {
		assert.InDelta(t, int(b[i].R), int(px.R), 2)
		assert.InDelta(t, int(b[i].G), int(px.G), 2)
		assert.InDelta(t, int(b[i].B), int(px.B), 2)
		assert.Equal(t, uint8(255), px.A)
	}
}

func TestEncodeDecodeRoundTripAllTransparent(t *testing.T) {
	var b Block // zero value: all texels {0,0,0,0}
	packed := Encode(b)
	decoded, err := Decode(packed)
	require.NoError(t, err)
	for _, px := range decoded {
		assert.Equal(t, uint8(0), px.A)
	}
}

func TestExpandEndpointReplicatesHighBits(t *testing.T) {
	// 4-bit value 0xF expands to 0xFF (full replication, no p-bit).
	assert.Equal(t, uint8(0xFF), expandEndpoint(0xF, 0, false, 4))
	// 4-bit value 0x0 expands to 0x00.
	assert.Equal(t, uint8(0x00), expandEndpoint(0x0, 0, false, 4))
	// 7-bit value with p-bit 1 set reaches the maximum 0xFF.
	assert.Equal(t, uint8(0xFF), expandEndpoint(0x7F, 1, true, 7))
}

func TestInterpolateEndpointsBoundaries(t *testing.T) {
	assert.Equal(t, uint8(10), interpolate(10, 200, 0))
	assert.Equal(t, uint8(200), interpolate(10, 200, 64))
}

func TestPartitionTablesUseAtMostTheirSubsetCount(t *testing.T) {
	for p := 0; p < 64; p++ {
		seen := map[uint8]bool{}
		for _, s := range Partitions2[p] {
			seen[s] = true
		}
		assert.LessOrEqual(t, len(seen), 2)
	}
	for p := 0; p < 64; p++ {
		seen := map[uint8]bool{}
		for _, s := range Partitions3[p] {
			seen[s] = true
		}
		assert.LessOrEqual(t, len(seen), 3)
	}
}
