// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package clientcertificate provides the ClientCertificateType enum
// sent in a CertificateRequest.
package clientcertificate

// Type is the IANA ClientCertificateType enum.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type Type byte

const (
	RSASign   Type = 1
	ECDSASign Type = 64
)

func (t Type) String() string {
	switch t {
	case RSASign:
		return "RSASign"
	case ECDSASign:
		return "ECDSASign"
	default:
		return "Unknown"
	}
}
