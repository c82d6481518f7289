// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageCertificate carries the sender's certificate chain, leaf
// first.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
type MessageCertificate struct {
	Certificate [][]byte
}

func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

func (m *MessageCertificate) Marshal() ([]byte, error) {
	out := []byte{0x00, 0x00, 0x00}

	for _, r := range m.Certificate {
		if len(r) == 0 {
			continue
		}
		out = append(out, 0x00, 0x00, 0x00)
		putUint24(out[len(out)-3:], uint32(len(r)))
		out = append(out, r...)
	}

	putUint24(out, uint32(len(out)-3))
	return out, nil
}

func (m *MessageCertificate) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}

	certificateBodyLen := int(getUint24(data))
	if len(data) != certificateBodyLen+3 {
		return errLengthMismatch
	}

	m.Certificate = [][]byte{}

	offset := 3
	for offset < len(data) {
		if len(data) < offset+3 {
			return errBufferTooSmall
		}
		certificateLen := int(getUint24(data[offset:]))
		offset += 3
		if len(data) < offset+certificateLen {
			return errBufferTooSmall
		}

		m.Certificate = append(m.Certificate, append([]byte{}, data[offset:offset+certificateLen]...))
		offset += certificateLen
	}

	return nil
}
