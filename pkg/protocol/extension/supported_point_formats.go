// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// PointFormat is the IANA ECPointFormat enum.
type PointFormat byte

const PointFormatUncompressed PointFormat = 0

// SupportedPointFormats is used to negotiate the point format used in
// an ECDHE key exchange.
//
// https://tools.ietf.org/html/rfc8422#section-5.1.2
type SupportedPointFormats struct {
	PointFormats []PointFormat
}

func (s SupportedPointFormats) TypeValue() TypeValue {
	return SupportedPointFormatsTypeValue
}

func (s *SupportedPointFormats) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+len(s.PointFormats))
	out[0] = byte(len(s.PointFormats))
	for _, f := range s.PointFormats {
		out = append(out, byte(f))
	}
	return out, nil
}

func (s *SupportedPointFormats) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}

	s.PointFormats = make([]PointFormat, n)
	for i := 0; i < n; i++ {
		s.PointFormats[i] = PointFormat(data[1+i])
	}
	return nil
}
