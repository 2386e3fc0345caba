package archive

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/bigblob/pkg/bberr"
	"github.com/goopsie/bigblob/pkg/toc"
)

func sampleArchive() *Archive {
	return &Archive{
		Entries: []*Entry{
			{
				Name:     "textures/wall.dds",
				FileType: toc.FileTypeImage,
				Width:    4,
				Height:   4,
				Data:     Data{Raw: bytes.Repeat([]byte{1, 2, 3, 4}, 16)},
			},
			{
				Name:     "sounds/hit.wav",
				FileType: toc.FileTypeSound,
				Data:     Data{Raw: []byte("not much to compress here, but still bytes")},
			},
		},
	}
}

func TestWriteToThenLoadRoundTrip(t *testing.T) {
	a := sampleArchive()

	var buf bytes.Buffer
	require.NoError(t, a.WriteTo(&buf))

	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 2)

	for i, e := range loaded.Entries {
		assert.Equal(t, a.Entries[i].Name, e.Name)
		assert.Equal(t, a.Entries[i].FileType, e.FileType)

		got, err := e.Decompress()
		require.NoError(t, err)
		assert.Equal(t, a.Entries[i].Data.Raw, got)
	}
}

func TestFindMissingEntry(t *testing.T) {
	a := sampleArchive()
	_, err := a.Find("does/not/exist")
	assert.Error(t, err)
}

func TestReplaceEntryFromFileRejectsMismatchedType(t *testing.T) {
	a := sampleArchive()
	dir := t.TempDir()
	path := filepath.Join(dir, "replacement.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	err := a.ReplaceEntryFromFile("textures/wall.dds", path)
	assert.Error(t, err)
	assert.True(t, bberr.Is(err, bberr.KindMismatchedType))
}

func TestReplaceEntryFromFileEncodesPNGAndUpdatesDimensions(t *testing.T) {
	a := sampleArchive()
	dir := t.TempDir()
	path := filepath.Join(dir, "replacement.png")

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	require.NoError(t, a.ReplaceEntryFromFile("textures/wall.dds", path))

	e, err := a.Find("textures/wall.dds")
	require.NoError(t, err)
	assert.Equal(t, uint32(8), e.Width)
	assert.Equal(t, uint32(8), e.Height)
	assert.NotEmpty(t, e.Data.Raw)
	// 8x8 base (2x2 tiles) + 4x4, 2x2, 1x1 mips (1 tile each), 16 bytes/block.
	assert.Equal(t, (4+1+1+1)*16, len(e.Data.Raw))
}

func TestReplaceEntryFromFileFallsBackToRawBytesOnUnparseableDDS(t *testing.T) {
	a := sampleArchive()
	dir := t.TempDir()
	path := filepath.Join(dir, "replacement.dds")
	garbage := []byte("this is not a dds header at all")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	require.NoError(t, a.ReplaceEntryFromFile("textures/wall.dds", path))

	e, err := a.Find("textures/wall.dds")
	require.NoError(t, err)
	assert.Equal(t, garbage, e.Data.Raw)
	// Dimensions are left untouched since the header never parsed.
	assert.Equal(t, uint32(4), e.Width)
	assert.Equal(t, uint32(4), e.Height)
}

func TestReplaceEntriesSkipsIdenticalContentInQuickMode(t *testing.T) {
	a := sampleArchive()
	var buf bytes.Buffer
	require.NoError(t, a.WriteTo(&buf))
	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sounds"), 0o755))
	original, err := loaded.Entries[1].Decompress()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sounds", "hit.wav"), original, 0o644))

	replaced, skipped, err := loaded.ReplaceEntries(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 0, replaced)
	assert.Equal(t, 1, skipped)
}
