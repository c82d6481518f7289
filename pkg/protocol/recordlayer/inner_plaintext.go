// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "github.com/coreshift/dtls/v2/pkg/protocol"

// InnerPlaintext is the structure encrypted inside a Connection-ID
// record: the real content, the real content type it replaces, and
// zero or more padding bytes to obscure the true content length.
//
//	struct {
//	    opaque content[length];
//	    ContentType real_type;
//	    uint8 zeros[length_of_padding];
//	} DTLSInnerPlaintext;
//
// https://datatracker.ietf.org/doc/html/rfc9146#section-4
type InnerPlaintext struct {
	Content  []byte
	RealType protocol.ContentType
	Zeros    uint
}

// Marshal encodes the InnerPlaintext.
func (i *InnerPlaintext) Marshal() ([]byte, error) {
	out := make([]byte, 0, len(i.Content)+1+int(i.Zeros))
	out = append(out, i.Content...)
	out = append(out, byte(i.RealType))
	out = append(out, make([]byte, i.Zeros)...)
	return out, nil
}

// Unmarshal decodes the InnerPlaintext, stripping trailing zero
// padding to recover the real content type and content.
func (i *InnerPlaintext) Unmarshal(data []byte) error {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	if end == 0 {
		return errBufferTooSmall
	}
	i.RealType = protocol.ContentType(data[end-1])
	i.Content = append([]byte{}, data[:end-1]...)
	i.Zeros = uint(len(data) - end)
	return nil
}
