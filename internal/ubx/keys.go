package ubx

import "fmt"

// KeyID is a 32-bit u-blox configuration key identifier.
//
// Bit layout (interface description section "Configuration data"):
//
//	[0-11]   item id
//	[12-15]  reserved
//	[16-23]  group id
//	[24-27]  reserved
//	[28-30]  storage size code
//	[31]     reserved
type KeyID uint32

// Storage size codes (bits 28-30).
const (
	sizeBit   = 0x01 // single bit, stored in one byte
	sizeByte  = 0x02
	sizeTwo   = 0x03
	sizeFour  = 0x04
	sizeEight = 0x05
)

// wildcardItem selects every item of a group in a CFG-VALGET poll.
const wildcardItem = 0xFFFF

// Group returns the key's group id (bits 16-23).
func (k KeyID) Group() byte {
	return byte(k >> 16)
}

// Item returns the key's item id (bits 0-11).
func (k KeyID) Item() uint16 {
	return uint16(k & 0x0FFF)
}

// Size returns the storage size of the key's value in bytes, or 0 if the
// size code is reserved/unknown. Single-bit values occupy one byte on the
// wire.
func (k KeyID) Size() int {
	switch (k >> 28) & 0x07 {
	case sizeBit, sizeByte:
		return 1
	case sizeTwo:
		return 2
	case sizeFour:
		return 4
	case sizeEight:
		return 8
	default:
		return 0
	}
}

// IsWildcard reports whether the key is a group wildcard.
func (k KeyID) IsWildcard() bool {
	return uint16(k) == wildcardItem
}

// String renders the key id in the conventional hex form.
func (k KeyID) String() string {
	return fmt.Sprintf("0x%08X", uint32(k))
}

// GroupWildcard returns the wildcard key id that polls every item of the
// given configuration group.
func GroupWildcard(group byte) KeyID {
	return KeyID(uint32(group)<<16 | wildcardItem)
}
