// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// ALPN negotiates the application-layer protocol run over the connection.
//
// https://tools.ietf.org/html/rfc7301
type ALPN struct {
	ProtocolNameList []string
}

func (a ALPN) TypeValue() TypeValue {
	return ALPNTypeValue
}

func (a *ALPN) Marshal() ([]byte, error) {
	body := []byte{}
	for _, p := range a.ProtocolNameList {
		if len(p) == 0 || len(p) > 255 {
			return nil, errALPNInvalidFormat
		}
		body = append(body, byte(len(p)))
		body = append(body, p...)
	}

	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	return append(out, body...), nil
}

func (a *ALPN) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen {
		return errBufferTooSmall
	}
	data = data[:listLen]

	a.ProtocolNameList = []string{}
	for len(data) != 0 {
		n := int(data[0])
		if len(data) < 1+n {
			return errBufferTooSmall
		}
		a.ProtocolNameList = append(a.ProtocolNameList, string(data[1:1+n]))
		data = data[1+n:]
	}
	if len(a.ProtocolNameList) == 0 {
		return errALPNNoAppProto
	}
	return nil
}

// ProtocolSelection returns the first protocol in supported that also
// appears in the peer's ProtocolNameList, following the server's
// preference order.
func (a *ALPN) ProtocolSelection(supported []string) (string, error) {
	for _, s := range supported {
		for _, p := range a.ProtocolNameList {
			if s == p {
				return s, nil
			}
		}
	}
	return "", errALPNNoAppProto
}
