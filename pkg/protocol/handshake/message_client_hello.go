// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/extension"
)

// MessageClientHello is the first message a client sends. It is sent
// twice in a full handshake: once with an empty Cookie to solicit a
// HelloVerifyRequest, and once more with the server-supplied Cookie
// echoed back.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.2
type MessageClientHello struct {
	Version protocol.Version
	Random  Random
	Cookie  []byte

	SessionID []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []*protocol.CompressionMethod
	Extensions         []extension.Extension
}

const messageClientHelloVariableWidthStart = 2 + RandomLength

func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}

	out := make([]byte, messageClientHelloVariableWidthStart)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	copy(out[2:], rand[:])

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.CipherSuiteIDs)*2))
	for _, c := range m.CipherSuiteIDs {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, c)
		out = append(out, b...)
	}

	out = append(out, byte(len(m.CompressionMethods)))
	for _, c := range m.CompressionMethods {
		out = append(out, byte(c.ID))
	}

	extensions, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}

	return append(out, extensions...), nil
}

func (m *MessageClientHello) Unmarshal(data []byte) error {
	if len(data) < 2+RandomLength {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	offset := messageClientHelloVariableWidthStart
	if len(data) <= offset {
		return errBufferTooSmall
	}
	sessionIDLen := int(data[offset])
	offset++
	if len(data) < offset+sessionIDLen {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, data[offset:offset+sessionIDLen]...)
	offset += sessionIDLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[offset:offset+cookieLen]...)
	offset += cookieLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	cipherSuitesLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+cipherSuitesLen {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = m.CipherSuiteIDs[:0]
	for i := 0; i < cipherSuitesLen/2; i++ {
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, binary.BigEndian.Uint16(data[offset+i*2:]))
	}
	offset += cipherSuitesLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	compressionMethodsLen := int(data[offset])
	offset++
	if len(data) < offset+compressionMethodsLen {
		return errBufferTooSmall
	}
	m.CompressionMethods = m.CompressionMethods[:0]
	for i := 0; i < compressionMethodsLen; i++ {
		if cm, ok := protocol.CompressionMethods()[protocol.CompressionMethodID(data[offset+i])]; ok {
			m.CompressionMethods = append(m.CompressionMethods, cm)
		}
	}
	offset += compressionMethodsLen

	if len(data) <= offset {
		m.Extensions = []extension.Extension{}
		return nil
	}

	extensions, err := extension.Unmarshal(data[offset:])
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
