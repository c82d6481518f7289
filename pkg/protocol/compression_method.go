// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// CompressionMethodID is the wire ID of a TLS/DTLS compression method.
//
// https://tools.ietf.org/html/rfc5246#appendix-A.4.1
type CompressionMethodID byte

// CompressionMethodNull is the only compression method this
// implementation negotiates; a ClientHello that does not offer NULL
// is rejected with handshake_failure.
const CompressionMethodNull CompressionMethodID = 0

// CompressionMethod wraps a CompressionMethodID.
type CompressionMethod struct {
	ID CompressionMethodID
}

// CompressionMethods returns the set of CompressionMethods this
// implementation recognizes, keyed by ID.
func CompressionMethods() map[CompressionMethodID]*CompressionMethod {
	return map[CompressionMethodID]*CompressionMethod{
		CompressionMethodNull: {ID: CompressionMethodNull},
	}
}

// DefaultCompressionMethods returns the compression methods offered in
// a ClientHello: NULL, and only NULL.
func DefaultCompressionMethods() []*CompressionMethod {
	return []*CompressionMethod{
		{ID: CompressionMethodNull},
	}
}
