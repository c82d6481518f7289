// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
)

// SupportedEllipticCurves is used to indicate the set of elliptic
// curves supported by the client.
//
// https://tools.ietf.org/html/rfc8422#section-5.1.1
type SupportedEllipticCurves struct {
	EllipticCurves []elliptic.Curve
}

func (s SupportedEllipticCurves) TypeValue() TypeValue {
	return SupportedEllipticCurvesTypeValue
}

func (s *SupportedEllipticCurves) Marshal() ([]byte, error) {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(s.EllipticCurves)*2))
	for _, c := range s.EllipticCurves {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(c))
		out = append(out, b...)
	}
	return out, nil
}

func (s *SupportedEllipticCurves) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	if len(data) < 2+listLen {
		return errBufferTooSmall
	}

	s.EllipticCurves = []elliptic.Curve{}
	for i := 0; i < listLen/2; i++ {
		offset := 2 + (i * 2)
		s.EllipticCurves = append(s.EllipticCurves, elliptic.Curve(binary.BigEndian.Uint16(data[offset:])))
	}
	return nil
}
