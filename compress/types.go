package compress

import (
	"fmt"
	"strings"

	"github.com/statlite/lapsis/errs"
)

// Type identifies the compression algorithm applied to a draws payload.
// The value is stored in the draws header, so constants are part of the
// binary format and must not be renumbered.
type Type uint8

const (
	// None stores the payload uncompressed.
	None Type = 0x1
	// Zstd selects Zstandard (cgo builds use the libzstd binding, pure-Go
	// builds the klauspost implementation).
	Zstd Type = 0x2
	// S2 selects the S2 Snappy-compatible format.
	S2 Type = 0x3
	// LZ4 selects LZ4 block compression.
	LZ4 Type = 0x4
)

// IsValid reports whether t is one of the defined compression types.
func (t Type) IsValid() bool {
	switch t {
	case None, Zstd, S2, LZ4:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseType maps a user-facing name ("none", "zstd", "s2", "lz4") to its
// compression type. Matching is case-insensitive.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return None, nil
	case "zstd":
		return Zstd, nil
	case "s2":
		return S2, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, name)
	}
}
