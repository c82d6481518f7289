// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/crypto/hash"
	"github.com/coreshift/dtls/v2/pkg/crypto/signature"
)

const namedCurveType = 3

// MessageServerKeyExchange carries the server's PSK identity hint
// and/or its ephemeral ECDHE public key, signed over the two hello
// randoms and the key exchange params for certificate-based suites.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.3
type MessageServerKeyExchange struct {
	IdentityHint []byte

	EllipticCurveType  uint8
	NamedCurve         elliptic.Curve
	PublicKey          []byte
	HashAlgorithm      hash.Algorithm
	SignatureAlgorithm signature.Algorithm
	Signature          []byte
}

func (m MessageServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	out := []byte{}

	if m.IdentityHint != nil {
		out = append(out, 0x00, 0x00)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.IdentityHint)))
		out = append(out, m.IdentityHint...)
	}

	if len(m.PublicKey) == 0 {
		return out, nil
	}

	out = append(out, namedCurveType)
	out = append(out, 0x00, 0x00)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(m.NamedCurve))

	out = append(out, byte(len(m.PublicKey)))
	out = append(out, m.PublicKey...)

	if len(m.Signature) > 0 {
		out = append(out, byte(m.HashAlgorithm), byte(m.SignatureAlgorithm))
		out = append(out, 0x00, 0x00)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.Signature)))
		out = append(out, m.Signature...)
	}

	return out, nil
}

// UnmarshalWithParams decodes a server key exchange. withIdentityHint/
// withECDHE/withSignature tell the parser which fields the negotiated
// cipher suite put on the wire, since the message has no
// self-describing layout: callers that know the suite (the
// handshaker, once it has parsed ServerHello) call this directly;
// Unmarshal assumes the certificate-authenticated ECDHE layout.
func (m *MessageServerKeyExchange) UnmarshalWithParams(data []byte, withIdentityHint, withECDHE, withSignature bool) error {
	offset := 0

	if withIdentityHint {
		if len(data) < offset+2 {
			return errBufferTooSmall
		}
		n := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+n {
			return errBufferTooSmall
		}
		m.IdentityHint = append([]byte{}, data[offset:offset+n]...)
		offset += n
	}

	if !withECDHE {
		return nil
	}

	if len(data) < offset+1 {
		return errBufferTooSmall
	}
	m.EllipticCurveType = data[offset]
	if m.EllipticCurveType != namedCurveType {
		return errInvalidEllipticCurveType
	}
	offset++

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	m.NamedCurve = elliptic.Curve(binary.BigEndian.Uint16(data[offset:]))
	offset += 2

	if len(data) < offset+1 {
		return errBufferTooSmall
	}
	pubLen := int(data[offset])
	offset++
	if len(data) < offset+pubLen {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, data[offset:offset+pubLen]...)
	offset += pubLen

	if !withSignature {
		return nil
	}

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	m.HashAlgorithm = hash.Algorithm(data[offset])
	m.SignatureAlgorithm = signature.Algorithm(data[offset+1])
	offset += 2

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	sigLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+sigLen {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, data[offset:offset+sigLen]...)

	return nil
}

// Unmarshal attempts the ECDHE-with-signature layout this module
// negotiates (certificate-authenticated key exchange); PSK-only
// servers construct the message directly instead of parsing it.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error {
	return m.UnmarshalWithParams(data, false, true, true)
}
