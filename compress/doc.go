// Package compress provides the payload codecs for the draws binary format.
//
// A persisted sample set is a fixed-width block of float64s (draw coordinates
// plus the parallel log-density and weight arrays). The block is compressed
// as a whole; the algorithm is recorded in the draws header so the decoder
// follows the header, not the encoder's configuration.
//
// # Interfaces
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// All built-in codecs are stateless values, safe for concurrent use; internal
// encoder instances are pooled where the underlying library rewards reuse.
//
// # Choosing a codec
//
//   - None: pass-through. Draw coordinates from a well-mixed posterior are
//     close to incompressible, so skipping the codec is often right.
//   - Zstd (compress.Zstd): best ratio, for archived sample sets. cgo builds
//     bind libzstd via valyala/gozstd; pure-Go builds use klauspost zstd.
//     The frames interoperate.
//   - S2 (compress.S2): fast with a useful ratio on the log-density arrays,
//     which carry far less entropy than the draws.
//   - LZ4 (compress.LZ4): fastest, lightest ratio, single-block format.
//
// Example:
//
//	codec, err := compress.GetCodec(compress.Zstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
package compress
