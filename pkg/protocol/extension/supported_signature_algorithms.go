// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/crypto/hash"
	"github.com/coreshift/dtls/v2/pkg/crypto/signature"
	"github.com/coreshift/dtls/v2/pkg/crypto/signaturehash"
)

// SupportedSignatureAlgorithms is used to indicate which
// signature/hash pairs can be used in digital signatures.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.4.1
type SupportedSignatureAlgorithms struct {
	SignatureHashAlgorithms []signaturehash.Algorithm
}

func (s SupportedSignatureAlgorithms) TypeValue() TypeValue {
	return SupportedSignatureAlgorithmsTypeValue
}

func (s *SupportedSignatureAlgorithms) Marshal() ([]byte, error) {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(s.SignatureHashAlgorithms)*2))
	for _, a := range s.SignatureHashAlgorithms {
		out = append(out, byte(a.Hash), byte(a.Signature))
	}
	return out, nil
}

func (s *SupportedSignatureAlgorithms) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen {
		return errBufferTooSmall
	}

	s.SignatureHashAlgorithms = []signaturehash.Algorithm{}
	for i := 0; i < listLen/2; i++ {
		offset := i * 2
		s.SignatureHashAlgorithms = append(s.SignatureHashAlgorithms, signaturehash.Algorithm{
			Hash:      hash.Algorithm(data[offset]),
			Signature: signature.Algorithm(data[offset+1]),
		})
	}
	return nil
}
