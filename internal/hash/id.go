package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a run or dataset name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Sum64 computes the xxHash64 fingerprint of serialized bytes.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
