// Command bigblob inspects, extracts, and rewrites bigblob asset archives.
// Flag parsing and dispatch follow the teacher's shape: package-level flag
// vars, a run() error that switches on a mode string, errors printed to
// stderr with a non-zero exit.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/goopsie/bigblob/pkg/archive"
	"github.com/goopsie/bigblob/pkg/bc7"
	"github.com/goopsie/bigblob/pkg/dds"
	"github.com/goopsie/bigblob/pkg/texture"
	"github.com/goopsie/bigblob/pkg/toc"
)

const defaultAssetsPath = "./assets.bigblob"
const extractDir = "dump"

var (
	imageFormat string
	compressor  string
	quick       bool
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	mode := os.Args[1]

	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	fs.StringVar(&imageFormat, "image-format", "dds", "extracted image format: dds or png")
	fs.StringVar(&compressor, "compressor", "internal", "bc7 encoder to use: internal or compressonator")
	fs.BoolVar(&quick, "quick", false, "skip re-encoding replacement files whose content hash is unchanged")
	fs.Parse(os.Args[2:])

	if err := run(mode, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bigblob <mode> [flags] [args]")
	fmt.Fprintln(os.Stderr, "  list-content      [assets]")
	fmt.Fprintln(os.Stderr, "  extract-all       [--image-format dds|png] [assets]")
	fmt.Fprintln(os.Stderr, "  extract-file      [--image-format dds|png] [assets] <entry_name>")
	fmt.Fprintln(os.Stderr, "  replace-entry     [--compressor internal|compressonator] [assets_in] [assets_out] <entry_name> <file>")
	fmt.Fprintln(os.Stderr, "  replace-entries   [--compressor …] [--quick] [assets_in] [assets_out] <folder>")
	fmt.Fprintln(os.Stderr, "  test-set-metadata [assets_in] [assets_out] <instructions.json>")
	fmt.Fprintln(os.Stderr, "  test-encode-bc7   <input_image> <output.dds>")
}

func run(mode string, args []string) error {
	switch mode {
	case "list-content":
		return runListContent(args)
	case "extract-all":
		return runExtractAll(args)
	case "extract-file":
		return runExtractFile(args)
	case "replace-entry":
		return runReplaceEntry(args)
	case "replace-entries":
		return runReplaceEntries(args)
	case "test-set-metadata":
		return runTestSetMetadata(args)
	case "test-encode-bc7":
		return runTestEncodeBC7(args)
	default:
		usage()
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

// splitSinglePath separates a command's trailing positional args (nRequired
// of them) from a single optional leading assets path, defaulting the path
// when the caller omitted it.
func splitSinglePath(args []string, nRequired int) (assetsPath string, rest []string, err error) {
	if len(args) < nRequired {
		return "", nil, fmt.Errorf("expected at least %d argument(s), got %d", nRequired, len(args))
	}
	extra := len(args) - nRequired
	rest = args[extra:]
	switch extra {
	case 0:
		assetsPath = defaultAssetsPath
	case 1:
		assetsPath = args[0]
	default:
		return "", nil, fmt.Errorf("too many path arguments")
	}
	return assetsPath, rest, nil
}

// splitPathArgs separates a command's trailing positional args (nRequired of
// them) from up to two leading paths: assets_in and assets_out. A single
// leading path is treated as both input and output (in-place rewrite); zero
// leading paths default both to defaultAssetsPath.
func splitPathArgs(args []string, nRequired int) (assetsIn, assetsOut string, rest []string, err error) {
	if len(args) < nRequired {
		return "", "", nil, fmt.Errorf("expected at least %d argument(s), got %d", nRequired, len(args))
	}
	extra := len(args) - nRequired
	rest = args[extra:]
	pathArgs := args[:extra]
	switch len(pathArgs) {
	case 0:
		assetsIn, assetsOut = defaultAssetsPath, defaultAssetsPath
	case 1:
		assetsIn, assetsOut = pathArgs[0], pathArgs[0]
	case 2:
		assetsIn, assetsOut = pathArgs[0], pathArgs[1]
	default:
		return "", "", nil, fmt.Errorf("too many path arguments")
	}
	return assetsIn, assetsOut, rest, nil
}

func openArchive(path string) (*archive.Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return archive.Load(f)
}

func writeArchive(a *archive.Archive, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return a.WriteTo(f)
}

func fileTypeName(ft toc.FileType) string {
	switch ft {
	case toc.FileTypeImage:
		return "image"
	case toc.FileTypeSound:
		return "sound"
	default:
		return fmt.Sprintf("unknown(%d)", ft)
	}
}

func entrySizes(e *archive.Entry) (compressed, decompressed int) {
	if e.Data.Raw != nil {
		return len(e.Data.Raw), len(e.Data.Raw)
	}
	return len(e.Data.Compressed), int(e.Data.UncompressedSize)
}

func runListContent(args []string) error {
	assetsPath, _, err := splitSinglePath(args, 0)
	if err != nil {
		return err
	}
	a, err := openArchive(assetsPath)
	if err != nil {
		return err
	}

	for _, e := range a.Entries {
		compressed, decompressed := entrySizes(e)
		fmt.Printf("%-48s %-7s %9d -> %9d bytes", e.Name, fileTypeName(e.FileType), compressed, decompressed)
		if e.FileType == toc.FileTypeImage {
			fmt.Printf("  %dx%d", e.Width, e.Height)
		}
		fmt.Println()
	}
	fmt.Printf("%d entries\n", len(a.Entries))
	return nil
}

func ceilDiv32(v, d uint32) uint32 {
	return (v + d - 1) / d
}

func imageOutputPath(name, outDir, format string) string {
	p := filepath.Join(outDir, filepath.FromSlash(name))
	ext := "." + format
	if !strings.HasSuffix(strings.ToLower(p), ext) {
		p += ext
	}
	return p
}

// extractEntry decompresses one entry and writes it under outDir, following
// original_source's policy: sound (and unrecognized) entries are dumped
// verbatim; image entries are written as a DDS (the compressed payload
// already is one, minus the header) or decoded and re-encoded as PNG,
// discarding everything past the base mip level.
func extractEntry(e *archive.Entry, outDir string) error {
	raw, err := e.Decompress()
	if err != nil {
		return fmt.Errorf("decompress %q: %w", e.Name, err)
	}

	if e.FileType != toc.FileTypeImage {
		outPath := filepath.Join(outDir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		return os.WriteFile(outPath, raw, 0o644)
	}

	outPath := imageOutputPath(e.Name, outDir, imageFormat)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	switch imageFormat {
	case "png":
		baseSize := int(ceilDiv32(e.Width, 4) * ceilDiv32(e.Height, 4) * 16)
		if baseSize > len(raw) {
			baseSize = len(raw)
		}
		img, err := texture.Decode(raw[:baseSize], e.Width, e.Height)
		if err != nil {
			return fmt.Errorf("decode bc7 for %q: %w", e.Name, err)
		}
		return png.Encode(out, img)
	case "dds":
		header := dds.New(e.Width, e.Height)
		if err := header.Write(out); err != nil {
			return err
		}
		_, err = out.Write(raw)
		return err
	default:
		return fmt.Errorf("unknown --image-format %q (want dds or png)", imageFormat)
	}
}

func runExtractAll(args []string) error {
	assetsPath, _, err := splitSinglePath(args, 0)
	if err != nil {
		return err
	}
	a, err := openArchive(assetsPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return err
	}

	for i, e := range a.Entries {
		if err := extractEntry(e, extractDir); err != nil {
			return err
		}
		fmt.Printf("\rextracted %d/%d", i+1, len(a.Entries))
	}
	fmt.Println()
	return nil
}

func runExtractFile(args []string) error {
	assetsPath, rest, err := splitSinglePath(args, 1)
	if err != nil {
		return err
	}
	entryName := rest[0]

	a, err := openArchive(assetsPath)
	if err != nil {
		return err
	}
	e, err := a.Find(entryName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return err
	}
	if err := extractEntry(e, extractDir); err != nil {
		return err
	}
	fmt.Printf("extracted %s\n", entryName)
	return nil
}

// describeCompressor names the BC7 encoder actually linked into this binary,
// which is fixed at build time by the bc7_compressonator build tag.
func describeCompressor() string {
	if bc7.CompressonatorBuild {
		return "compressonator"
	}
	return "internal"
}

func checkCompressorFlag() error {
	switch compressor {
	case "internal", "compressonator":
	default:
		return fmt.Errorf("unknown --compressor %q (want internal or compressonator)", compressor)
	}
	if active := describeCompressor(); compressor != active {
		fmt.Fprintf(os.Stderr, "warning: --compressor %s requested, but this binary links the %s encoder\n", compressor, active)
	}
	return nil
}

func runReplaceEntry(args []string) error {
	if err := checkCompressorFlag(); err != nil {
		return err
	}
	assetsIn, assetsOut, rest, err := splitPathArgs(args, 2)
	if err != nil {
		return err
	}
	entryName, path := rest[0], rest[1]

	a, err := openArchive(assetsIn)
	if err != nil {
		return err
	}
	if err := a.ReplaceEntryFromFile(entryName, path); err != nil {
		return err
	}
	if err := writeArchive(a, assetsOut); err != nil {
		return err
	}
	fmt.Printf("replaced %q from %s -> %s\n", entryName, path, assetsOut)
	return nil
}

func runReplaceEntries(args []string) error {
	if err := checkCompressorFlag(); err != nil {
		return err
	}
	assetsIn, assetsOut, rest, err := splitPathArgs(args, 1)
	if err != nil {
		return err
	}
	folder := rest[0]

	a, err := openArchive(assetsIn)
	if err != nil {
		return err
	}
	replaced, skipped, err := a.ReplaceEntries(folder, quick)
	if err != nil {
		return err
	}
	if err := writeArchive(a, assetsOut); err != nil {
		return err
	}
	fmt.Printf("replaced %d, skipped %d -> %s\n", replaced, skipped, assetsOut)
	return nil
}

// metadataOp is one instruction in a test-set-metadata JSON file: it mutates
// an Image entry's unks[1] pair, the "offset" metadata original_source's
// callers write. Fields left out of the JSON leave that half of the pair
// untouched; double_offset applies after any explicit offset_x/offset_y.
type metadataOp struct {
	EntryName    string  `json:"entry_name"`
	OffsetX      *uint32 `json:"offset_x"`
	OffsetY      *uint32 `json:"offset_y"`
	DoubleOffset bool    `json:"double_offset"`
}

func runTestSetMetadata(args []string) error {
	assetsIn, assetsOut, rest, err := splitPathArgs(args, 1)
	if err != nil {
		return err
	}
	instructionsPath := rest[0]

	instructionsBytes, err := os.ReadFile(instructionsPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", instructionsPath, err)
	}
	var ops []metadataOp
	if err := json.Unmarshal(instructionsBytes, &ops); err != nil {
		return fmt.Errorf("parse %s: %w", instructionsPath, err)
	}

	a, err := openArchive(assetsIn)
	if err != nil {
		return err
	}

	for _, op := range ops {
		e, err := a.Find(op.EntryName)
		if err != nil {
			return err
		}
		if op.OffsetX != nil {
			e.Unks[1][0] = *op.OffsetX
		}
		if op.OffsetY != nil {
			e.Unks[1][1] = *op.OffsetY
		}
		if op.DoubleOffset {
			e.Unks[1][0] *= 2
			e.Unks[1][1] *= 2
		}
	}

	if err := writeArchive(a, assetsOut); err != nil {
		return err
	}
	fmt.Printf("applied %d metadata operation(s) -> %s\n", len(ops), assetsOut)
	return nil
}

func runTestEncodeBC7(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("test-encode-bc7 requires <input_image> <output.dds>")
	}
	inPath, outPath := args[0], args[1]

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath, err)
	}
	img, err := png.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decode png %s: %w", inPath, err)
	}

	base := toNRGBA(img)
	bounds := base.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	header := dds.New(width, height)
	chain := texture.Mipmaps(base, int(header.MipmapCount))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if err := header.Write(out); err != nil {
		return err
	}
	for _, level := range chain {
		if _, err := out.Write(texture.Encode(level)); err != nil {
			return err
		}
	}
	fmt.Printf("encoded %s (%dx%d, %d mip levels) -> %s\n", inPath, width, height, len(chain), outPath)
	return nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
