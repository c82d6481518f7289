// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connector

import (
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// parseConnectionID extracts the Connection ID from the first record
// of an inbound datagram, if its content type indicates one is
// present (RFC 9146's tls12_cid, value 25). cidLength must be the
// fixed length every CID this connector hands out uses, since the
// wire format carries no explicit CID length of its own. Returns
// false if the datagram isn't a tls12_cid record, or is too short to
// hold a header of that shape.
func parseConnectionID(data []byte, cidLength int) ([]byte, bool) {
	if len(data) == 0 || protocol.ContentType(data[0]) != protocol.ContentTypeConnectionID {
		return nil, false
	}

	hdr := recordlayer.Header{ConnectionID: make([]byte, cidLength)}
	if err := hdr.Unmarshal(data); err != nil {
		return nil, false
	}
	return hdr.ConnectionID, true
}
