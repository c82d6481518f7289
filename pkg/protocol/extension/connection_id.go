// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// ConnectionID negotiates the use of Connection IDs, and carries the
// sender's chosen CID for the peer to use on outgoing records.
//
//	struct {
//	    opaque cid<0..2^8-1>;
//	} ConnectionId;
//
// https://datatracker.ietf.org/doc/html/rfc9146#section-3
type ConnectionID struct {
	CID []byte
}

func (c ConnectionID) TypeValue() TypeValue {
	return ConnectionIDTypeValue
}

func (c *ConnectionID) Marshal() ([]byte, error) {
	if len(c.CID) > 255 {
		return nil, errBufferTooSmall
	}
	return append([]byte{byte(len(c.CID))}, c.CID...), nil
}

func (c *ConnectionID) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	c.CID = append([]byte{}, data[1:1+n]...)
	return nil
}
