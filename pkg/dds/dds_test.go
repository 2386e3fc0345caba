package dds

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/bigblob/pkg/bberr"
)

func TestWriteParseRoundTrip(t *testing.T) {
	h := New(256, 128)
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	assert.Equal(t, 148, buf.Len())

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.Width, got.Width)
	assert.Equal(t, h.Height, got.Height)
	assert.Equal(t, h.MipmapCount, got.MipmapCount)
	assert.Equal(t, h.ResourceDimension, got.ResourceDimension)
	assert.Equal(t, h.AlphaMode, got.AlphaMode)
}

func TestParseRejectsWrongMagic(t *testing.T) {
	h := New(16, 16)
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	raw := buf.Bytes()
	raw[0] = 'X'

	_, err := Parse(bytes.NewReader(raw))
	assert.True(t, bberr.Is(err, bberr.KindWrongMagic))
}

func TestParseRejectsNonBC7Format(t *testing.T) {
	h := New(16, 16)
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	raw := buf.Bytes()
	raw[128] = 0 // zero out the DXGI format's low byte (98 -> not 98)

	_, err := Parse(bytes.NewReader(raw))
	assert.True(t, bberr.Is(err, bberr.KindUnknownFormat))
}

func TestMipmapCountMatchesLargerDimension(t *testing.T) {
	h := New(256, 4)
	assert.Equal(t, uint32(9), h.MipmapCount) // 256 needs 9 bits (1..256)
}
