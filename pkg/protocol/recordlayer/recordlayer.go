// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"github.com/coreshift/dtls/v2/pkg/protocol"
)

// RecordLayer pairs a Header with its decoded Content.
// ContentAwareUnpackDatagram only splits a datagram into raw records;
// Unmarshal decodes one of them into the concrete Content that
// contentFromType picks for the header's ContentType. Fragmented
// handshake messages are reassembled one level up.
type RecordLayer struct {
	Header  Header
	Content protocol.Content
}

// Marshal encodes the header followed by the marshaled Content.
func (r *RecordLayer) Marshal() ([]byte, error) {
	if r.Content == nil {
		return nil, errInvalidContentType
	}
	contentRaw, err := r.Content.Marshal()
	if err != nil {
		return nil, err
	}

	r.Header.ContentType = r.Content.ContentType()
	r.Header.ContentLen = uint16(len(contentRaw))

	headerRaw, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerRaw, contentRaw...), nil
}

// Unmarshal decodes a header and dispatches its fragment to the
// concrete Content type the header's ContentType names.
func (r *RecordLayer) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}

	content, err := contentFromType(r.Header.ContentType)
	if err != nil {
		return err
	}

	offset := r.Header.Size()
	if err := content.Unmarshal(data[offset:]); err != nil {
		return err
	}
	r.Content = content

	return nil
}
