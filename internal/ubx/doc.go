// Package ubx implements the subset of the u-blox UBX binary protocol needed
// to snapshot and restore receiver configuration on generation 9+ devices.
//
// # Frame Structure
//
// Every UBX frame is self-length-prefixed:
//
//	[0]     0xB5        Sync char 1
//	[1]     0x62        Sync char 2
//	[2]     class       Message class
//	[3]     id          Message id
//	[4-5]   length      Payload length (little-endian uint16)
//	[6+]    payload     Message payload
//	[N]     CK_A        Fletcher checksum byte A
//	[N+1]   CK_B        Fletcher checksum byte B
//
// The checksum covers class, id, length and payload.
//
// # Messages
//
// The package encodes and decodes the four messages the configuration engine
// uses:
//
//   - CFG-VALGET (0x06 0x8B): poll configuration key/value pairs, paginated
//     via a position field, at most 64 pairs per response
//   - CFG-VALSET (0x06 0x8A): apply key/value pairs to one or more storage
//     layers, optionally as a member of a transaction
//   - ACK-ACK (0x05 0x01) and ACK-NAK (0x05 0x00): per-message positive and
//     negative acknowledgement, carrying the acknowledged class/id
//
// # Configuration Keys
//
// A configuration key id packs its storage size (bits 28-30), group id
// (bits 16-23) and item id (bits 0-11) into a uint32. The package exposes the
// decoding and the group wildcard form used to poll every item of a group.
//
// The package has no knowledge of individual key semantics; values are opaque
// byte strings whose length is dictated by the key id's size field.
package ubx
