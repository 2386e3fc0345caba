//go:build !bc7_compressonator

package bc7

// CompressonatorBuild reports whether this binary was built with
// -tags bc7_compressonator, so callers can validate a requested
// --compressor flag against what's actually linked in.
const CompressonatorBuild = false

// Encode is the active block encoder. The default build uses the
// placeholder software encoder; building with -tags bc7_compressonator
// swaps in the external Compressonator CGo plugin instead.
func Encode(b Block) [16]byte {
	return EncodeBlock(b)
}
