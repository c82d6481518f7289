// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "github.com/coreshift/dtls/v2/pkg/protocol"

// ContentAwareUnpackDatagram splits one UDP datagram into the raw
// records it carries. A flight's records may be concatenated into a
// single datagram up to the path MTU (spec "Outbound" rule); this
// undoes that packing on the receive side. cidLength is the locally
// negotiated Connection ID length (0 if CIDs are not in use) so that
// tls12_cid records, which carry no inline length prefix for their
// CID, can be sized correctly.
func ContentAwareUnpackDatagram(buf []byte, cidLength int) ([][]byte, error) {
	out := make([][]byte, 0)

	for offset := 0; offset < len(buf); {
		if len(buf)-offset < FixedHeaderSize {
			return nil, ErrInvalidPacketLength
		}

		hdrLen := FixedHeaderSize
		if protocol.ContentType(buf[offset]) == ConnectionIDContentType {
			hdrLen += cidLength
		}
		if len(buf)-offset < hdrLen+2 {
			return nil, ErrInvalidPacketLength
		}

		contentLen := int(buf[offset+hdrLen])<<8 | int(buf[offset+hdrLen+1])
		recordLen := hdrLen + 2 + contentLen
		if len(buf)-offset < recordLen {
			return nil, ErrInvalidPacketLength
		}

		out = append(out, buf[offset:offset+recordLen])
		offset += recordLen
	}

	return out, nil
}
