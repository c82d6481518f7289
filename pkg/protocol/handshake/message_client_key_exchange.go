// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageClientKeyExchange carries the client's half of the key
// exchange: either its ephemeral ECDHE public key, or a PSK identity
// naming the secret it wants to use. Exactly one of the two is set;
// which one the wire form uses is determined by the negotiated cipher
// suite, not by anything self-describing in the message.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7
type MessageClientKeyExchange struct {
	IdentityHint []byte
	PublicKey    []byte
}

func (m MessageClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	if (m.IdentityHint == nil) == (m.PublicKey == nil) {
		return nil, errInvalidClientKeyExchange
	}

	body := m.IdentityHint
	if m.PublicKey != nil {
		body = m.PublicKey
	}

	return append([]byte{byte(len(body))}, body...), nil
}

// Unmarshal decodes the length-prefixed body without knowing whether
// it is a PSK identity or a public key; the caller resolves that
// ambiguity from the negotiated cipher suite and copies the result
// into the field it expects.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, data[1:1+n]...)
	return nil
}
