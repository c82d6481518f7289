// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// Version is the record-layer protocol version. DTLS encodes versions
// as the one's complement of the "real" TLS version: DTLS 1.2 is wire
// value {254, 253}.
//
// https://tools.ietf.org/html/rfc6347#section-4.1
type Version struct {
	Major, Minor uint8
}

// Version1_0 is DTLS 1.0.
var Version1_0 = Version{Major: 0xfe, Minor: 0xff} //nolint:revive,stylecheck

// Version1_2 is DTLS 1.2, the only version this implementation speaks.
var Version1_2 = Version{Major: 0xfe, Minor: 0xfd} //nolint:revive,stylecheck

// Equal reports whether two versions are the same.
func (v Version) Equal(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}
