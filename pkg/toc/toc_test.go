package toc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var payload bytes.Buffer
	var body bytes.Buffer

	tocOffset := uint32(4)
	for range entries {
		// payload bytes are irrelevant to TOC parsing; offsets are assigned
		// by the caller in entries themselves for this test helper.
	}
	body.Write(payload.Bytes())

	var toc bytes.Buffer
	require.NoError(t, binary.Write(&toc, binary.LittleEndian, uint32(len(entries))))
	for _, e := range entries {
		require.NoError(t, WriteEntry(&toc, e))
	}

	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, binary.LittleEndian, tocOffset+uint32(body.Len())))
	out.Write(body.Bytes())
	out.Write(toc.Bytes())
	return out.Bytes()
}

func TestReadFromRoundTrip(t *testing.T) {
	entries := []Entry{
		{
			Name:             "textures/wall.dds",
			FileType:         FileTypeImage,
			SizeDecompressed: 65536,
			Size:             12345,
			Unks:             Unknowns{{1, 2}, {3, 4}, {5, 6}},
			Width:            256,
			Height:           256,
			Offset:           4,
		},
		{
			Name:             "sounds/hit.wav",
			FileType:         FileTypeSound,
			SizeDecompressed: 4096,
			Size:             2048,
			Offset:           12349,
		},
	}

	raw := buildArchive(t, entries)
	got, err := ReadFrom(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, entries[0], got.Entries[0])
	assert.Equal(t, entries[1], got.Entries[1])
}
