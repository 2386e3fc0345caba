//go:build bc7_compressonator

package bc7

/*
#cgo LDFLAGS: -lCompressonator
#include <stdint.h>
#include <stddef.h>

extern int32_t CompressBlockBC7(const uint8_t *src, size_t stride, uint8_t *dst, void *options);
*/
import "C"
import (
	"fmt"
	"os"
	"unsafe"
)

// CompressonatorBuild reports whether this binary was built with
// -tags bc7_compressonator.
const CompressonatorBuild = true

// EncodeBlockExternal calls out to the external Compressonator BC7 encoder,
// grounded on cmd/texconv/encoder.go's libsquish CGo wrapper shape and
// original_source/src/bc7/encode.rs's encode_bc7_compressonator FFI call.
// Built only when the bc7_compressonator tag selects a real perceptual
// encoder over the placeholder in encode.go. A nonzero return from
// CompressBlockBC7 is surfaced as a warning and falls back to the
// placeholder encoder, mirroring the DDS-parse-failure fallback policy.
func EncodeBlockExternal(b Block) [16]byte {
	var src [16 * 4]byte
	for i, px := range b {
		src[i*4+0] = px.R
		src[i*4+1] = px.G
		src[i*4+2] = px.B
		src[i*4+3] = px.A
	}

	var dst [16]byte
	status := C.CompressBlockBC7(
		(*C.uint8_t)(unsafe.Pointer(&src[0])),
		C.size_t(16),
		(*C.uint8_t)(unsafe.Pointer(&dst[0])),
		nil,
	)
	if status != 0 {
		fmt.Fprintf(os.Stderr, "warning: Compressonator CompressBlockBC7 returned %d, falling back to placeholder encoder\n", status)
		return EncodeBlock(b)
	}
	return dst
}

// Encode is the active block encoder when built with -tags bc7_compressonator.
func Encode(b Block) [16]byte {
	return EncodeBlockExternal(b)
}
