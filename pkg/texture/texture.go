// Package texture is the image codec driver: it tiles a decoded BC7 payload
// into 4x4 blocks and back, and builds the mipmap chain a DDS header
// advertises. Grounded on original_source/src/bc7/encode.rs's
// encode_image_par (tiling, out-of-bounds-pixel handling, parallel
// iteration) and src/bc7.rs's decode_bc7.
package texture

import (
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/image/draw"

	"github.com/goopsie/bigblob/pkg/bc7"
)

const blockDim = 4

// Decode inflates a raw BC7 payload (width*height pixels, stored as
// ceil(width/4)*ceil(height/4) 16-byte blocks in row-major tile order) into
// an RGBA image. Blocks decode concurrently since each is independent.
func Decode(raw []byte, width, height uint32) (*image.NRGBA, error) {
	tilesX := ceilDiv(width, blockDim)
	tilesY := ceilDiv(height, blockDim)
	numTiles := int(tilesX * tilesY)

	blocks := make([][16]byte, numTiles)
	for i := range blocks {
		off := i * 16
		copy(blocks[i][:], raw[off:off+16])
	}

	decoded := make([]bc7.Block, numTiles)
	errs := make([]error, numTiles)
	parallelFor(numTiles, func(i int) {
		b, err := bc7.Decode(blocks[i])
		decoded[i] = b
		errs[i] = err
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for tile := range decoded {
		tx, ty := tile%int(tilesX), tile/int(tilesX)
		baseX, baseY := tx*blockDim, ty*blockDim
		for ly := 0; ly < blockDim; ly++ {
			y := baseY + ly
			if y >= int(height) {
				continue
			}
			for lx := 0; lx < blockDim; lx++ {
				x := baseX + lx
				if x >= int(width) {
					continue
				}
				px := decoded[tile][ly*blockDim+lx]
				img.SetNRGBA(x, y, color.NRGBA{R: px.R, G: px.G, B: px.B, A: px.A})
			}
		}
	}
	return img, nil
}

// Encode packs an image into a raw BC7 payload, tile by tile, left-to-right
// then top-to-bottom. Pixels outside the source image's bounds (the last
// row/column of tiles when width or height isn't a multiple of 4) default to
// fully transparent black, matching original_source's out-of-bounds policy.
func Encode(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	tilesX := ceilDiv(width, blockDim)
	tilesY := ceilDiv(height, blockDim)
	numTiles := int(tilesX * tilesY)

	blocks := make([]bc7.Block, numTiles)
	for tile := range blocks {
		tx, ty := tile%int(tilesX), tile/int(tilesX)
		baseX, baseY := bounds.Min.X+tx*blockDim, bounds.Min.Y+ty*blockDim
		var block bc7.Block
		for ly := 0; ly < blockDim; ly++ {
			for lx := 0; lx < blockDim; lx++ {
				x, y := baseX+lx, baseY+ly
				if x >= bounds.Max.X || y >= bounds.Max.Y {
					continue // zero-value RGBA{} is fully transparent black
				}
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				block[ly*blockDim+lx] = bc7.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
			}
		}
		blocks[tile] = block
	}

	out := make([]byte, len(blocks)*16)
	parallelFor(len(blocks), func(i int) {
		packed := bc7.Encode(blocks[i])
		copy(out[i*16:i*16+16], packed[:])
	})
	return out
}

// Mipmaps builds the full mip chain down to 1x1 using Catmull-Rom
// resampling, the same resampler family the pack's image-pipeline example
// exposes via golang.org/x/image/draw for high-quality downscaling.
func Mipmaps(base *image.NRGBA, levels int) []*image.NRGBA {
	chain := make([]*image.NRGBA, 0, levels)
	chain = append(chain, base)
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	for i := 1; i < levels && (w > 1 || h > 1); i++ {
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
		level := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(level, level.Bounds(), chain[i-1], chain[i-1].Bounds(), draw.Over, nil)
		chain = append(chain, level)
	}
	return chain
}

func ceilDiv(v, d uint32) uint32 {
	return (v + d - 1) / d
}

// parallelFor runs fn(i) for i in [0, n) across a worker pool bounded by the
// host's CPU count, mirroring encode_image_par's bounded parallel tile
// iteration without requiring the caller to manage goroutines directly.
func parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
