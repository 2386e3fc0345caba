// Package archive holds a bigblob archive's entries in memory for mutation
// and re-emission, grounded on original_source/src/encoding.rs's
// Archive::from_file_and_toc/write_to_file two-pass algorithm.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goopsie/bigblob/internal/lz4x"
	"github.com/goopsie/bigblob/pkg/bberr"
	"github.com/goopsie/bigblob/pkg/toc"
)

// Data is an entry's payload: either already-compressed bytes carried
// through unchanged (the common case when only a handful of entries
// change), or Raw bytes awaiting compression on the next write.
type Data struct {
	// Raw, when non-nil, is uncompressed payload bytes that WriteTo must
	// LZ4-compress before emitting. Compressed and UncompressedSize are
	// ignored while Raw is set.
	Raw []byte

	Compressed       []byte
	UncompressedSize uint32
}

// Entry is one archive member: its table-of-contents metadata plus its
// payload.
type Entry struct {
	Name     string
	FileType toc.FileType
	Width    uint32
	Height   uint32
	Unks     toc.Unknowns
	Data     Data
}

// Archive is a bigblob archive loaded fully into memory.
type Archive struct {
	Entries []*Entry
}

// Load reads every entry's table-of-contents record and payload bytes from
// an archive opened for random access.
func Load(r io.ReaderAt) (*Archive, error) {
	t, err := toc.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read toc: %w", err)
	}

	entries := make([]*Entry, len(t.Entries))
	for i, te := range t.Entries {
		buf := make([]byte, te.Size)
		if _, err := r.ReadAt(buf, int64(te.Offset)); err != nil {
			return nil, fmt.Errorf("read payload for %q: %w", te.Name, err)
		}
		entries[i] = &Entry{
			Name:     te.Name,
			FileType: te.FileType,
			Width:    te.Width,
			Height:   te.Height,
			Unks:     te.Unks,
			Data: Data{
				Compressed:       buf,
				UncompressedSize: te.SizeDecompressed,
			},
		}
	}
	return &Archive{Entries: entries}, nil
}

// Find returns the entry with the given name, or a KindMissingEntry error.
func (a *Archive) Find(name string) (*Entry, error) {
	for _, e := range a.Entries {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, bberr.New(bberr.KindMissingEntry, name)
}

// Decompress returns an entry's inflated payload bytes; when the entry
// currently holds Raw (not yet compressed) data, those bytes are returned
// as they are.
func (e *Entry) Decompress() ([]byte, error) {
	if e.Data.Raw != nil {
		return e.Data.Raw, nil
	}
	return lz4x.Decompress(e.Data.Compressed, int(e.Data.UncompressedSize))
}

// compiledEntry is an entry with its payload finalized to compressed bytes,
// the shape WriteTo's second pass needs to assign offsets.
type compiledEntry struct {
	*Entry
	compressed       []byte
	uncompressedSize uint32
}

func compile(e *Entry) (compiledEntry, error) {
	if e.Data.Raw == nil {
		return compiledEntry{Entry: e, compressed: e.Data.Compressed, uncompressedSize: e.Data.UncompressedSize}, nil
	}
	compressed, err := lz4x.Compress(e.Data.Raw)
	if err != nil {
		return compiledEntry{}, fmt.Errorf("compress %q: %w", e.Name, err)
	}
	return compiledEntry{Entry: e, compressed: compressed, uncompressedSize: uint32(len(e.Data.Raw))}, nil
}

// WriteTo emits the archive in bigblob's two-pass layout: the TOC offset
// word, every entry's compressed payload back to back starting at byte 4,
// then the entry count and TOC records, mirroring
// Archive::write_to_file exactly.
func (a *Archive) WriteTo(w io.Writer) error {
	compiled := make([]compiledEntry, len(a.Entries))
	var dataSize uint32
	for i, e := range a.Entries {
		c, err := compile(e)
		if err != nil {
			return err
		}
		compiled[i] = c
		dataSize += uint32(len(c.compressed))
	}

	startOfTOC := dataSize + 4
	if err := writeU32(w, startOfTOC); err != nil {
		return fmt.Errorf("write toc offset: %w", err)
	}

	runningOffset := uint32(4)
	tocEntries := make([]toc.Entry, len(compiled))
	for i, c := range compiled {
		if _, err := w.Write(c.compressed); err != nil {
			return fmt.Errorf("write payload for %q: %w", c.Name, err)
		}
		tocEntries[i] = toc.Entry{
			Name:             c.Name,
			FileType:         c.FileType,
			SizeDecompressed: c.uncompressedSize,
			Size:             uint32(len(c.compressed)),
			Unks:             c.Unks,
			Width:            c.Width,
			Height:           c.Height,
			Offset:           runningOffset,
		}
		runningOffset += uint32(len(c.compressed))
	}

	if err := writeU32(w, uint32(len(tocEntries))); err != nil {
		return fmt.Errorf("write entry count: %w", err)
	}
	for i, te := range tocEntries {
		if err := toc.WriteEntry(w, te); err != nil {
			return fmt.Errorf("write toc entry %d: %w", i, err)
		}
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}
