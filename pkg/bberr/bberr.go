// Package bberr defines the closed set of error kinds the bigblob codecs
// distinguish, so callers (and tests) can match on kind rather than on
// error strings.
package bberr

import (
	"errors"
	"fmt"
)

// Kind classifies an error raised by the archive, DDS, or BC7 codecs.
type Kind int

const (
	// KindUnknown covers errors that don't belong to a more specific kind.
	KindUnknown Kind = iota
	// KindIO marks failures from archive read/write or directory walks.
	KindIO
	// KindWrongMagic marks a DDS header with an unexpected magic value.
	KindWrongMagic
	// KindWrongHeaderSize marks a DDS header whose size field isn't 124.
	KindWrongHeaderSize
	// KindWrongPixelFormatSize marks a DDS pixel format block that isn't 32 bytes.
	KindWrongPixelFormatSize
	// KindUnknownFourCC marks a DDS pixel format FourCC other than "DX10".
	KindUnknownFourCC
	// KindUnknownFormat marks a DX10 header whose DXGI format isn't BC7_UNORM.
	KindUnknownFormat
	// KindUnknownResourceDimension marks a DX10 header with an unrecognized resource dimension.
	KindUnknownResourceDimension
	// KindUnknownAlphaMode marks a DX10 header with an unrecognized alpha mode.
	KindUnknownAlphaMode
	// KindInvalidBC7Mode marks a block whose mode prefix selects mode 8 or beyond.
	KindInvalidBC7Mode
	// KindMissingEntry marks a lookup of an entry name the TOC doesn't contain.
	KindMissingEntry
	// KindMismatchedType marks a replacement whose source format doesn't match the entry's file type.
	KindMismatchedType
	// KindLZ4Decompress marks a failure inflating an entry's compressed payload.
	KindLZ4Decompress
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindWrongMagic:
		return "wrong_magic"
	case KindWrongHeaderSize:
		return "wrong_header_size"
	case KindWrongPixelFormatSize:
		return "wrong_pixel_format_size"
	case KindUnknownFourCC:
		return "unknown_fourcc"
	case KindUnknownFormat:
		return "unknown_format"
	case KindUnknownResourceDimension:
		return "unknown_resource_dimension"
	case KindUnknownAlphaMode:
		return "unknown_alpha_mode"
	case KindInvalidBC7Mode:
		return "invalid_bc7_mode"
	case KindMissingEntry:
		return "missing_entry"
	case KindMismatchedType:
		return "mismatched_type"
	case KindLZ4Decompress:
		return "lz4_decompress"
	default:
		return "unknown"
	}
}

// Error wraps a cause with a classification kind.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a classified error with no further wrapped cause.
func New(kind Kind, context string) error {
	return &Error{Kind: kind, Context: context}
}

// Wrap classifies an existing error, matching the teacher's
// fmt.Errorf("context: %w", err) idiom but additionally tagging a Kind.
func Wrap(kind Kind, context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsKind extracts the Kind of err, or KindUnknown if err isn't a classified Error.
func AsKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
