// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package extension implements the TLS/DTLS hello extensions this
// implementation negotiates: supported elliptic curves, supported
// point formats, signature algorithms, server name indication, ALPN,
// extended master secret, renegotiation info, use-SRTP, and
// Connection ID.
package extension

import "encoding/binary"

// TypeValue is the IANA-assigned extension_type.
type TypeValue uint16

const (
	// SupportedEllipticCurvesTypeValue is used to indicate the
	// elliptic curves supported by the client.
	SupportedEllipticCurvesTypeValue TypeValue = 10
	// SupportedPointFormatsTypeValue is used to negotiate the point
	// format used in an ECDHE key exchange.
	SupportedPointFormatsTypeValue TypeValue = 11
	// SupportedSignatureAlgorithmsTypeValue is used to indicate which
	// signature/hash pairs can be used in digital signatures.
	SupportedSignatureAlgorithmsTypeValue TypeValue = 13
	// UseSRTPTypeValue negotiates the SRTP protection profile used
	// over the DTLS connection.
	UseSRTPTypeValue TypeValue = 14
	// ALPNTypeValue is used to negotiate the application protocol.
	ALPNTypeValue TypeValue = 16
	// UseExtendedMasterSecretTypeValue indicates support for the
	// extended master secret computation of RFC 7627.
	UseExtendedMasterSecretTypeValue TypeValue = 23
	// ConnectionIDTypeValue negotiates RFC 9146 Connection IDs.
	ConnectionIDTypeValue TypeValue = 54
	// ServerNameTypeValue carries the client's requested server name.
	ServerNameTypeValue TypeValue = 0
	// RenegotiationInfoTypeValue signals secure renegotiation support.
	RenegotiationInfoTypeValue TypeValue = 0xff01
)

// Extension is a TLS extension.
type Extension interface {
	TypeValue() TypeValue
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

func newFor(t TypeValue) Extension {
	switch t {
	case SupportedEllipticCurvesTypeValue:
		return &SupportedEllipticCurves{}
	case SupportedPointFormatsTypeValue:
		return &SupportedPointFormats{}
	case SupportedSignatureAlgorithmsTypeValue:
		return &SupportedSignatureAlgorithms{}
	case UseSRTPTypeValue:
		return &UseSRTP{}
	case ALPNTypeValue:
		return &ALPN{}
	case UseExtendedMasterSecretTypeValue:
		return &UseExtendedMasterSecret{}
	case ConnectionIDTypeValue:
		return &ConnectionID{}
	case ServerNameTypeValue:
		return &ServerName{}
	case RenegotiationInfoTypeValue:
		return &RenegotiationInfo{}
	default:
		return nil
	}
}

// Marshal encodes a list of extensions, each prefixed by its type and
// length, the whole list itself length-prefixed.
func Marshal(extensions []Extension) ([]byte, error) {
	extensionBody := []byte{}
	for _, e := range extensions {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		header := make([]byte, 4)
		binary.BigEndian.PutUint16(header, uint16(e.TypeValue()))
		binary.BigEndian.PutUint16(header[2:], uint16(len(raw)))
		extensionBody = append(extensionBody, header...)
		extensionBody = append(extensionBody, raw...)
	}

	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(extensionBody)))
	return append(out, extensionBody...), nil
}

// Unmarshal decodes a length-prefixed list of extensions. Extension
// types this package does not implement are skipped.
func Unmarshal(data []byte) ([]Extension, error) {
	if len(data) == 0 {
		return []Extension{}, nil
	}
	if len(data) < 2 {
		return nil, errBufferTooSmall
	}

	declared := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < declared {
		return nil, errBufferTooSmall
	}
	data = data[:declared]

	extensions := []Extension{}
	for len(data) != 0 {
		if len(data) < 4 {
			return nil, errBufferTooSmall
		}
		t := TypeValue(binary.BigEndian.Uint16(data))
		length := int(binary.BigEndian.Uint16(data[2:]))
		if len(data) < 4+length {
			return nil, errBufferTooSmall
		}

		if e := newFor(t); e != nil {
			if err := e.Unmarshal(data[4 : 4+length]); err != nil {
				return nil, err
			}
			extensions = append(extensions, e)
		}

		data = data[4+length:]
	}

	return extensions, nil
}
