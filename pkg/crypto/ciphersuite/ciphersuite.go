// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"encoding/binary"

	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// generateAEADAdditionalData builds the AEAD associated data for a
// record with no Connection ID, per RFC 5246 Section 6.2.3.3: the
// 8-byte epoch+sequence_number, content type, version, and plaintext
// length.
func generateAEADAdditionalData(h *recordlayer.Header, payloadLen int) []byte {
	var additionalData [13]byte
	// SequenceNumber MUST be set first; PutUint64 clobbers the first two
	// bytes that Epoch then overwrites, since Go has no uint48.
	binary.BigEndian.PutUint64(additionalData[:], h.SequenceNumber)
	binary.BigEndian.PutUint16(additionalData[:], h.Epoch)
	additionalData[8] = byte(h.ContentType)
	additionalData[9] = h.Version.Major
	additionalData[10] = h.Version.Minor
	binary.BigEndian.PutUint16(additionalData[len(additionalData)-2:], uint16(payloadLen))

	return additionalData[:]
}

// generateAEADAdditionalDataCID builds the AEAD associated data for a
// tls12_cid record per RFC 9146 Section 4: epoch+sequence_number,
// tls12_cid, cid_length, the CID itself, tls12_cid again, version, and
// plaintext length.
func generateAEADAdditionalDataCID(h *recordlayer.Header, payloadLen int) []byte {
	additionalData := make([]byte, 15+len(h.ConnectionID))

	binary.BigEndian.PutUint64(additionalData, h.SequenceNumber)
	binary.BigEndian.PutUint16(additionalData, h.Epoch)

	offset := 8
	additionalData[offset] = byte(h.ContentType)
	offset++
	additionalData[offset] = byte(len(h.ConnectionID))
	offset++
	copy(additionalData[offset:], h.ConnectionID)
	offset += len(h.ConnectionID)
	additionalData[offset] = byte(h.ContentType)
	offset++
	additionalData[offset] = h.Version.Major
	additionalData[offset+1] = h.Version.Minor
	offset += 2
	binary.BigEndian.PutUint16(additionalData[offset:], uint16(payloadLen))

	return additionalData
}
