// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/crypto/hash"
	"github.com/coreshift/dtls/v2/pkg/crypto/signature"
)

// MessageCertificateVerify lets a client that presented a certificate
// prove possession of its private key by signing the handshake
// transcript seen so far.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.8
type MessageCertificateVerify struct {
	HashAlgorithm      hash.Algorithm
	SignatureAlgorithm signature.Algorithm
	Signature          []byte
}

func (m MessageCertificateVerify) Type() Type {
	return TypeCertificateVerify
}

func (m *MessageCertificateVerify) Marshal() ([]byte, error) {
	if m.HashAlgorithm == hash.None {
		return nil, errInvalidHashAlgorithm
	}

	out := []byte{byte(m.HashAlgorithm), byte(m.SignatureAlgorithm), 0x00, 0x00}
	binary.BigEndian.PutUint16(out[2:], uint16(len(m.Signature)))
	return append(out, m.Signature...), nil
}

func (m *MessageCertificateVerify) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}

	if _, ok := hash.Algorithms()[hash.Algorithm(data[0])]; !ok {
		return errInvalidHashAlgorithm
	}
	m.HashAlgorithm = hash.Algorithm(data[0])

	if _, ok := signature.Algorithms()[signature.Algorithm(data[1])]; !ok {
		return errInvalidSignatureAlgorithm
	}
	m.SignatureAlgorithm = signature.Algorithm(data[1])

	n := int(binary.BigEndian.Uint16(data[2:]))
	if len(data) < 4+n {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, data[4:4+n]...)
	return nil
}
