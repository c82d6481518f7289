// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

// FixedHeaderSize is the size of a record header before any
// Connection ID bytes: type(1) version(2) epoch(2) seq(6) length(2).
const FixedHeaderSize = 13

// MaxSequenceNumber is the largest value the 48-bit record sequence
// number can hold. Per RFC 6347 Section 4.1, an implementation must
// rehandshake or abandon the association before the counter wraps.
const MaxSequenceNumber = 0x0000FFFFFFFFFFFF

// ConnectionIDContentType is the record content type that indicates a
// Connection ID is present. https://datatracker.ietf.org/doc/html/rfc9146
const ConnectionIDContentType = protocol.ContentTypeConnectionID

// Header is the fixed part of a DTLS record.
//
//	struct {
//	    ContentType      type;
//	    ProtocolVersion  version;
//	    uint16           epoch;
//	    uint48           sequence_number;
//	    opaque           connection_id[cid_length]; // only if type == tls12_cid
//	    uint16           length;
//	    opaque           fragment[length];
//	} DTLSPlaintext;
type Header struct {
	ContentType    protocol.ContentType
	Version        protocol.Version
	Epoch          uint16
	SequenceNumber uint64
	ConnectionID   []byte // non-nil (possibly zero-length) ⇒ caller expects a CID of this length on Unmarshal
	ContentLen     uint16
}

// Size returns the marshaled size of the header, including any CID.
func (h *Header) Size() int {
	return FixedHeaderSize + len(h.ConnectionID)
}

// Marshal encodes the Header.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, h.Size())
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:], h.Epoch)

	// 48-bit sequence number
	putUint48(out[5:], h.SequenceNumber)

	offset := 11
	if h.ContentType == ConnectionIDContentType {
		copy(out[offset:], h.ConnectionID)
		offset += len(h.ConnectionID)
	}
	binary.BigEndian.PutUint16(out[offset:], h.ContentLen)

	return out, nil
}

// Unmarshal decodes the Header. If h.ConnectionID is non-nil on entry,
// its length is used as the expected CID length for
// ConnectionIDContentType records.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < FixedHeaderSize {
		return ErrInvalidPacketLength
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version.Major = data[1]
	h.Version.Minor = data[2]
	h.Epoch = binary.BigEndian.Uint16(data[3:])
	h.SequenceNumber = getUint48(data[5:])

	offset := 11
	if h.ContentType == ConnectionIDContentType {
		cidLen := len(h.ConnectionID)
		if len(data) < offset+cidLen+2 {
			return ErrInvalidPacketLength
		}
		h.ConnectionID = append([]byte{}, data[offset:offset+cidLen]...)
		offset += cidLen
	} else {
		h.ConnectionID = nil
	}

	if len(data) < offset+2 {
		return ErrInvalidPacketLength
	}
	h.ContentLen = binary.BigEndian.Uint16(data[offset:])

	if len(data) != offset+2+int(h.ContentLen) {
		return ErrInvalidPacketLength
	}

	return nil
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func getUint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}
