// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite provides the AEAD crypto operations a negotiated
// cipher suite uses to protect DTLS records.
package ciphersuite

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var (
	errNotEnoughRoomForNonce = &protocol.InternalError{Err: errors.New("buffer not long enough to contain nonce")}
	errDecryptPacket         = &protocol.TemporaryError{Err: errors.New("failed to decrypt packet")}
)
