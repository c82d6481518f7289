// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package elliptic

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var errInvalidNamedCurve = &protocol.FatalError{Err: errors.New("invalid named curve")}
