// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var (
	errBufferTooSmall      = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	errInvalidSRTPProtectionProfile = &protocol.FatalError{Err: errors.New("invalid or unknown srtp protection profile")}
	errALPNInvalidFormat   = &protocol.FatalError{Err: errors.New("invalid alpn format")}
	errALPNNoAppProto      = &protocol.FatalError{Err: errors.New("no application protocol provided")}
	errInvalidSNIFormat    = &protocol.FatalError{Err: errors.New("invalid server name format")}
)
