// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/coreshift/dtls/v2/pkg/protocol"

// Handshake is a record whose content is a (possibly fragmented)
// handshake message. A complete flight is reassembled one message at
// a time outside of this package (the reassembler tracks
// message_seq/fragment_offset/fragment_length across many records);
// Unmarshal decodes the concrete Message only when the record it is
// given already carries an unfragmented message.
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType implements protocol.Content.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the Header followed by the Message body. Callers
// needing MTU-sized fragments slice the result themselves and adjust
// FragmentOffset/FragmentLength per fragment.
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Message == nil {
		return nil, errHandshakeMessageUnset
	}

	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(body))
	if h.Header.FragmentLength == 0 && h.Header.FragmentOffset == 0 {
		h.Header.FragmentLength = uint32(len(body))
	}

	header, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(header, body...), nil
}

// Unmarshal decodes the Header and, when the record carries a
// complete (unfragmented) message, the concrete Message body.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	data = data[HeaderLength:]

	if uint32(len(data)) != h.Header.FragmentLength {
		return errLengthMismatch
	}

	if h.Header.FragmentOffset != 0 || h.Header.FragmentLength != h.Header.Length {
		// Partial fragment; reassembly happens one layer up.
		return nil
	}

	msg, err := messageFromType(h.Header.Type)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(data); err != nil {
		return err
	}

	h.Message = msg
	return nil
}

func messageFromType(t Type) (Message, error) {
	switch t {
	case TypeClientHello:
		return &MessageClientHello{}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeHelloVerifyRequest:
		return &MessageHelloVerifyRequest{}, nil
	case TypeCertificate:
		return &MessageCertificate{}, nil
	case TypeServerKeyExchange:
		return &MessageServerKeyExchange{}, nil
	case TypeCertificateRequest:
		return &MessageCertificateRequest{}, nil
	case TypeServerHelloDone:
		return &MessageServerHelloDone{}, nil
	case TypeClientKeyExchange:
		return &MessageClientKeyExchange{}, nil
	case TypeCertificateVerify:
		return &MessageCertificateVerify{}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errNotImplemented
	}
}
