// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/coreshift/dtls/v2/pkg/protocol"

// MessageHelloVerifyRequest is sent by the server in response to a
// ClientHello with no or an invalid cookie, asking the client to
// retry with the Cookie echoed back. This round trip forces the
// client to prove ownership of its claimed source address before the
// server commits any per-connection state.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.1
type MessageHelloVerifyRequest struct {
	Version protocol.Version
	Cookie  []byte
}

func (m MessageHelloVerifyRequest) Type() Type {
	return TypeHelloVerifyRequest
}

func (m *MessageHelloVerifyRequest) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}

	out := make([]byte, 2)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor
	out = append(out, byte(len(m.Cookie)))
	return append(out, m.Cookie...), nil
}

func (m *MessageHelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	n := int(data[2])
	if len(data) < 3+n {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[3:3+n]...)
	return nil
}
