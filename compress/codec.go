package compress

import (
	"fmt"

	"github.com/statlite/lapsis/errs"
)

// Compressor compresses a complete draws payload.
//
// Payloads are fixed-width float64 blocks (draw coordinates and the parallel
// log-density arrays), typically 8KB-1MB. Implementations return a newly
// allocated slice, leave the input untouched, and may reuse internal buffers.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses Compressor. Implementations validate the input
// framing and fail on corrupted or mismatched data rather than returning
// partial output.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All built-in codecs are stateless values
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes one compression operation, for reporting and inspection.
type Stats struct {
	// Algorithm identifies the codec used.
	Algorithm Type

	// OriginalSize is the payload size before compression.
	OriginalSize int64

	// CompressedSize is the payload size after compression.
	CompressedSize int64
}

// Ratio returns compressed size over original size. Values below 1.0 indicate
// the codec helped; 0.0 is returned for an empty original.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the savings as a percentage of the original size.
func (s Stats) SpaceSavings() float64 {
	return (1.0 - s.Ratio()) * 100.0
}

var builtinCodecs = map[Type]Codec{
	None: NewNoOpCodec(),
	Zstd: NewZstdCodec(),
	S2:   NewS2Codec(),
	LZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for the given compression type.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedCompression, uint8(t))
}
