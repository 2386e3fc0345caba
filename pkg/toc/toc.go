// Package toc parses and emits a bigblob archive's table of contents,
// grounded on original_source/src/lib.rs's read_toc/read_entry and
// src/encoding.rs's Archive::write_to_file, following the teacher's
// pkg/manifest binary marshal/unmarshal idiom (UnmarshalBinary/MarshalBinary
// methods, fmt.Errorf("...: %w") wrapping).
package toc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FileType tags an entry's payload interpretation.
type FileType uint32

const (
	FileTypeImage FileType = 0
	FileTypeSound FileType = 1
)

// Unknowns carries the three (u32, u32) pairs per entry whose purpose
// original_source never resolved; bigblob preserves them byte-for-byte on
// every round trip instead of guessing at their meaning.
type Unknowns [3][2]uint32

// Entry is one archive member's table-of-contents record.
type Entry struct {
	Name             string
	FileType         FileType
	SizeDecompressed uint32
	Size             uint32
	Unks             Unknowns
	Width            uint32 // 0 for Sound entries
	Height           uint32 // 0 for Sound entries
	Offset           uint32 // byte offset of the payload from the start of the file
}

// TOC is the fully parsed table of contents: every entry's metadata, not
// the payload bytes themselves.
type TOC struct {
	Entries []Entry
}

// ReadFrom locates and parses the table of contents of an archive opened for
// random access: the first 4 bytes give the TOC's own file offset.
func ReadFrom(r io.ReaderAt) (TOC, error) {
	var tocOffsetBuf [4]byte
	if _, err := r.ReadAt(tocOffsetBuf[:], 0); err != nil {
		return TOC{}, fmt.Errorf("read toc offset: %w", err)
	}
	tocOffset := binary.LittleEndian.Uint32(tocOffsetBuf[:])

	sr := io.NewSectionReader(r, int64(tocOffset), 1<<62-int64(tocOffset))
	var countBuf [4]byte
	if _, err := io.ReadFull(sr, countBuf[:]); err != nil {
		return TOC{}, fmt.Errorf("read entry count: %w", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	entries := make([]Entry, count)
	for i := range entries {
		e, err := readEntry(sr)
		if err != nil {
			return TOC{}, fmt.Errorf("read entry %d: %w", i, err)
		}
		entries[i] = e
	}
	return TOC{Entries: entries}, nil
}

// fixedEntrySize is the byte length of every entry field up to (but not
// including) name_len and the name bytes themselves: file_type,
// size_decompressed, size, 3x(u32,u32) unks, width, height, offset.
const fixedEntrySize = 4 * 12

func readEntry(r io.Reader) (Entry, error) {
	var e Entry

	var buf [fixedEntrySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Entry{}, err
	}
	le := binary.LittleEndian
	e.FileType = FileType(le.Uint32(buf[0:4]))
	e.SizeDecompressed = le.Uint32(buf[4:8])
	e.Size = le.Uint32(buf[8:12])
	e.Unks[0] = [2]uint32{le.Uint32(buf[12:16]), le.Uint32(buf[16:20])}
	e.Unks[1] = [2]uint32{le.Uint32(buf[20:24]), le.Uint32(buf[24:28])}
	e.Unks[2] = [2]uint32{le.Uint32(buf[28:32]), le.Uint32(buf[32:36])}
	e.Width = le.Uint32(buf[36:40])
	e.Height = le.Uint32(buf[40:44])
	e.Offset = le.Uint32(buf[44:48])

	var nameLenBuf [4]byte
	if _, err := io.ReadFull(r, nameLenBuf[:]); err != nil {
		return Entry{}, err
	}
	nameLen := le.Uint32(nameLenBuf[:])
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return Entry{}, err
	}
	e.Name = string(nameBuf)
	return e, nil
}

// WriteEntry emits one entry record in the same field order readEntry parses.
func WriteEntry(w io.Writer, e Entry) error {
	buf := make([]byte, 0, 48+len(e.Name))
	put32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}

	put32(uint32(e.FileType))
	put32(e.SizeDecompressed)
	put32(e.Size)
	for _, pair := range e.Unks {
		put32(pair[0])
		put32(pair[1])
	}
	put32(e.Width)
	put32(e.Height)
	put32(e.Offset)
	put32(uint32(len(e.Name)))
	buf = append(buf, e.Name...)

	_, err := w.Write(buf)
	return err
}
