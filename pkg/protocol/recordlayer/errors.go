// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements the DTLS Record Layer.
// https://tools.ietf.org/html/rfc6347#section-4.1
package recordlayer

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var (
	// ErrInvalidPacketLength is returned when the packet length is too
	// small or does not match the declared length.
	ErrInvalidPacketLength = &protocol.TemporaryError{
		Err: errors.New("packet length and declared length do not match"),
	}

	errBufferTooSmall             = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	errSequenceNumberOverflow     = &protocol.InternalError{Err: errors.New("sequence number overflow")}
	errUnsupportedProtocolVersion = &protocol.FatalError{Err: errors.New("unsupported protocol version")}
	errInvalidContentType         = &protocol.TemporaryError{Err: errors.New("invalid content type")}
)
