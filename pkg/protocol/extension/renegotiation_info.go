// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// RenegotiationInfo signals secure renegotiation support. DTLS 1.2
// never renegotiates, so this is sent and accepted empty, purely to
// satisfy peers that require it before completing a handshake.
//
// https://tools.ietf.org/html/rfc5746
type RenegotiationInfo struct {
	RenegotiatedConnection []byte
}

func (r RenegotiationInfo) TypeValue() TypeValue {
	return RenegotiationInfoTypeValue
}

func (r *RenegotiationInfo) Marshal() ([]byte, error) {
	return append([]byte{byte(len(r.RenegotiatedConnection))}, r.RenegotiatedConnection...), nil
}

func (r *RenegotiationInfo) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	r.RenegotiatedConnection = append([]byte{}, data[1:1+n]...)
	return nil
}
