// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/crypto/clientcertificate"
	"github.com/coreshift/dtls/v2/pkg/crypto/hash"
	"github.com/coreshift/dtls/v2/pkg/crypto/signature"
	"github.com/coreshift/dtls/v2/pkg/crypto/signaturehash"
)

// MessageCertificateRequest is sent by a server that requires the
// client to authenticate with its own certificate.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type MessageCertificateRequest struct {
	CertificateTypes            []clientcertificate.Type
	SignatureHashAlgorithms     []signaturehash.Algorithm
	CertificateAuthoritiesNames [][]byte
}

func (m MessageCertificateRequest) Type() Type {
	return TypeCertificateRequest
}

func (m *MessageCertificateRequest) Marshal() ([]byte, error) {
	out := []byte{byte(len(m.CertificateTypes))}
	for _, t := range m.CertificateTypes {
		out = append(out, byte(t))
	}

	sigHashAlgos := make([]byte, 2)
	for _, a := range m.SignatureHashAlgorithms {
		sigHashAlgos = append(sigHashAlgos, byte(a.Hash), byte(a.Signature))
	}
	binary.BigEndian.PutUint16(sigHashAlgos, uint16(len(sigHashAlgos)-2))
	out = append(out, sigHashAlgos...)

	casLength := 0
	for _, ca := range m.CertificateAuthoritiesNames {
		casLength += len(ca) + 2
	}
	out = append(out, 0x00, 0x00)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(casLength))
	for _, ca := range m.CertificateAuthoritiesNames {
		out = append(out, 0x00, 0x00)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(ca)))
		out = append(out, ca...)
	}

	return out, nil
}

func (m *MessageCertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}

	n := int(data[0])
	offset := 1
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	m.CertificateTypes = make([]clientcertificate.Type, n)
	for i := 0; i < n; i++ {
		m.CertificateTypes[i] = clientcertificate.Type(data[offset+i])
	}
	offset += n

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	sigHashLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+sigHashLen {
		return errBufferTooSmall
	}
	m.SignatureHashAlgorithms = []signaturehash.Algorithm{}
	for i := 0; i < sigHashLen/2; i++ {
		o := offset + i*2
		m.SignatureHashAlgorithms = append(m.SignatureHashAlgorithms, signaturehash.Algorithm{
			Hash:      hash.Algorithm(data[o]),
			Signature: signature.Algorithm(data[o+1]),
		})
	}
	offset += sigHashLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	casLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+casLen {
		return errBufferTooSmall
	}

	m.CertificateAuthoritiesNames = nil
	remaining := casLen
	for remaining > 0 {
		if remaining < 2 || len(data) < offset+2 {
			return errBufferTooSmall
		}
		nameLen := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		remaining -= 2
		if remaining < nameLen || len(data) < offset+nameLen {
			return errBufferTooSmall
		}
		m.CertificateAuthoritiesNames = append(m.CertificateAuthoritiesNames, append([]byte{}, data[offset:offset+nameLen]...))
		offset += nameLen
		remaining -= nameLen
	}

	return nil
}
