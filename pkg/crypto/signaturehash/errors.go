// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package signaturehash

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var (
	errInvalidPrivateKey           = &protocol.FatalError{Err: errors.New("invalid private key type")}
	errNoAvailableSignatureSchemes = &protocol.FatalError{Err: errors.New("no available signature schemes")}
	errInvalidSignatureAlgorithm   = &protocol.FatalError{Err: errors.New("invalid signature algorithm")}
	errInvalidHashAlgorithm        = &protocol.FatalError{Err: errors.New("invalid hash algorithm")}
)
