// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package prf

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol"
)

var errElementEmpty = &protocol.InternalError{Err: errors.New("element is empty")}
