package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripFlatImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}

	raw := Encode(img)
	assert.Len(t, raw, 4*16) // 2x2 tiles of 4x4 blocks, 16 bytes each

	decoded, err := Decode(raw, 8, 8)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := decoded.NRGBAAt(x, y)
			assert.InDelta(t, 30, int(c.R), 2)
			assert.InDelta(t, 60, int(c.G), 2)
			assert.InDelta(t, 90, int(c.B), 2)
			assert.Equal(t, uint8(255), c.A)
		}
	}
}

func TestEncodeHandlesNonMultipleOf4Dimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	raw := Encode(img)
	assert.Len(t, raw, 2*16) // ceil(5/4)=2 tiles wide, ceil(3/4)=1 tile tall
}

func TestMipmapsShrinkToOnePixel(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	chain := Mipmaps(base, 5)
	require.Len(t, chain, 5)
	assert.Equal(t, 16, chain[0].Bounds().Dx())
	assert.Equal(t, 1, chain[4].Bounds().Dx())
	assert.Equal(t, 1, chain[4].Bounds().Dy())
}
