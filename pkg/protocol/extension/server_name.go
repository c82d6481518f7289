// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

const serverNameTypeDNSHostName = 0

// ServerName carries the client's requested server name (SNI).
//
// https://tools.ietf.org/html/rfc6066#section-3
type ServerName struct {
	ServerName string
}

func (s ServerName) TypeValue() TypeValue {
	return ServerNameTypeValue
}

func (s *ServerName) Marshal() ([]byte, error) {
	name := []byte(s.ServerName)

	nameEntry := make([]byte, 3, 3+len(name))
	nameEntry[0] = serverNameTypeDNSHostName
	binary.BigEndian.PutUint16(nameEntry[1:], uint16(len(name)))
	nameEntry = append(nameEntry, name...)

	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(nameEntry)))
	return append(out, nameEntry...), nil
}

func (s *ServerName) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen || listLen < 3 {
		return errInvalidSNIFormat
	}

	if data[0] != serverNameTypeDNSHostName {
		return errInvalidSNIFormat
	}
	nameLen := int(binary.BigEndian.Uint16(data[1:]))
	if len(data) < 3+nameLen {
		return errInvalidSNIFormat
	}

	s.ServerName = string(data[3 : 3+nameLen])
	return nil
}
