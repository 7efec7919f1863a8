package compress

// ZstdCodec provides Zstandard compression for draws payloads.
//
// Zstd trades compression speed for ratio, which suits archived sample sets:
// a posterior is drawn once and may be re-read many times. The implementation
// is selected at build time: cgo builds bind libzstd through valyala/gozstd,
// pure-Go builds use klauspost/compress/zstd. Both produce interchangeable
// frames, so blobs written by one build decode under the other.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstandard codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
