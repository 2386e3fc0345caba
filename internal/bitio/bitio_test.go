package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTripSingleWidths(t *testing.T) {
	var w Writer
	w.Put(4, 0b1010)
	w.Put(6, 0b110011)
	w.Put(1, 1)
	block := w.Block()

	r := NewReader(block)
	assert.Equal(t, uint64(1), r.Bits(1))
	assert.Equal(t, uint64(0b110011), r.Bits(6))
	assert.Equal(t, uint64(0b1010), r.Bits(4))
}

func TestPutRevReproducesSourceOrder(t *testing.T) {
	var w Writer
	w.PutRev(4, 0b0001, 0b0010, 0b0011)
	block := w.Block()

	r := NewReader(block)
	assert.Equal(t, uint64(0b0001), r.Bits(4))
	assert.Equal(t, uint64(0b0010), r.Bits(4))
	assert.Equal(t, uint64(0b0011), r.Bits(4))
}

func TestReadPastEndYieldsZero(t *testing.T) {
	var w Writer
	w.Put(8, 0xFF)
	r := NewReader(w.Block())
	assert.Equal(t, uint64(0xFF), r.Bits(8))
	for i := 0; i < 15; i++ {
		assert.Equal(t, uint64(0), r.Bits(8))
	}
}

func TestTrailingZeros128(t *testing.T) {
	assert.Equal(t, 128, TrailingZeros128(0, 0))
	assert.Equal(t, 0, TrailingZeros128(1, 0xFFFFFFFFFFFFFFFF))
	assert.Equal(t, 64, TrailingZeros128(0, 1))
	assert.Equal(t, 7, TrailingZeros128(0b10000000, 0))
}

func TestShiftAcrossWordBoundary(t *testing.T) {
	var w Writer
	w.Put(64, 1)
	w.Put(40, 0x12345)
	block := w.Block()
	r := NewReader(block)
	assert.Equal(t, uint64(0x12345), r.Bits(40))
	assert.Equal(t, uint64(1), r.Bits(64))
}
