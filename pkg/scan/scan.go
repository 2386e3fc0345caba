// Package scan walks a replacement directory tree into archive entry names,
// adapted from the teacher's pkg/manifest/scanner.go directory-walk idiom
// (filepath.Walk + filepath.ToSlash) for bigblob's flat "<name>" entry
// naming instead of manifest's "<chunk>/<type>/<file>" layout.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a single replacement file discovered under an input directory,
// keyed by the archive entry name it is meant to replace.
type File struct {
	// EntryName is the archive entry name this file replaces, derived from
	// its path relative to the scanned root with OS separators normalized
	// to "/".
	EntryName string
	Path      string
	Size      int64
}

// Dir walks root and returns one File per regular file found, in the order
// filepath.Walk visits them (lexical per directory).
func Dir(root string) ([]File, error) {
	var files []File
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		files = append(files, File{
			EntryName: filepath.ToSlash(rel),
			Path:      path,
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}
