// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
)

func contentFromType(t protocol.ContentType) (protocol.Content, error) {
	switch t {
	case protocol.ContentTypeChangeCipherSpec:
		return &protocol.ChangeCipherSpec{}, nil
	case protocol.ContentTypeAlert:
		return &alert.Alert{}, nil
	case protocol.ContentTypeApplicationData:
		return &protocol.ApplicationData{}, nil
	case protocol.ContentTypeHandshake:
		return &handshake.Handshake{}, nil
	default:
		return nil, errInvalidContentType
	}
}
