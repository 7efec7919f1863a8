// Package endian selects the byte order used by the draws binary format.
//
// It combines the standard library's ByteOrder and AppendByteOrder interfaces
// into a single Engine so encoders can both read fixed-width fields and append
// to growing payload buffers through one value. binary.LittleEndian and
// binary.BigEndian satisfy Engine directly.
//
// Little-endian is the format default (native on the platforms the library
// targets); big-endian is supported for interoperability and selected by a
// header flag bit.
package endian

import "encoding/binary"

// Engine is the byte-order handle threaded through draws encoding/decoding.
// Engines are immutable and safe for concurrent use.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Little returns the little-endian engine, the draws format default.
func Little() Engine {
	return binary.LittleEndian
}

// Big returns the big-endian engine.
func Big() Engine {
	return binary.BigEndian
}

// IsLittle reports whether e is the little-endian engine. Used when packing
// the header's byte-order flag bit.
func IsLittle(e Engine) bool {
	return e == Little()
}
