// Package checksum provides the 32-bit hash functions used to pick a starting slot for an
// address probe.
package checksum

import (
	"hash/crc32"
)

const (
	fnvOffset32 uint32 = 0x811c9dc5
	fnvPrime32  uint32 = 0x01000193
)

// Hasher maps a key to a 32-bit value. Implementations must be deterministic and must not
// allocate.
type Hasher interface {
	Sum32(data []byte) uint32
	Name() string
}

// FNV1a is the 32-bit FNV-1a hash.
type FNV1a struct{}

func NewFNV1a() FNV1a {
	return FNV1a{}
}

func (FNV1a) Sum32(data []byte) uint32 {
	hash := fnvOffset32
	for _, b := range data {
		hash ^= uint32(b)
		hash *= fnvPrime32
	}
	return hash
}

func (FNV1a) Name() string {
	return "fnv1a"
}

// CRC32IEEE is the little-endian CRC-32 used by common network hardware.
type CRC32IEEE struct {
	table *crc32.Table
}

func NewCRC32IEEE() *CRC32IEEE {
	return &CRC32IEEE{table: crc32.MakeTable(crc32.IEEE)}
}

func (c *CRC32IEEE) Sum32(data []byte) uint32 {
	return crc32.Checksum(data, c.table)
}

func (c *CRC32IEEE) Name() string {
	return "crc32"
}

// ByName returns the hasher registered under name, or false when name is unknown.
func ByName(name string) (Hasher, bool) {
	switch name {
	case "", "fnv1a":
		return NewFNV1a(), true
	case "crc32":
		return NewCRC32IEEE(), true
	}
	return nil, false
}
