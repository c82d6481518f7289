// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/coreshift/dtls/v2/pkg/crypto/clientcertificate"
	"github.com/coreshift/dtls/v2/pkg/crypto/signaturehash"
)

// ClientHelloInfo is the subset of an inbound ClientHello a server's
// Config.GetCertificate callback needs to pick among several
// certificates.
type ClientHelloInfo struct {
	// ServerName is the client's requested SNI host name, if any.
	ServerName string
	// CipherSuites is the list the client offered, in its preference order.
	CipherSuites []CipherSuiteID
}

// CertificateRequestInfo is the subset of an inbound
// CertificateRequest a client's Config.GetClientCertificate callback
// needs to pick a certificate that satisfies the server's policy.
type CertificateRequestInfo struct {
	// AcceptableCAs lists the DER-encoded subject names of CAs the
	// server will accept, empty if the server did not restrict this.
	AcceptableCAs [][]byte
}

func clientCertificateTypes() []clientcertificate.Type {
	return []clientcertificate.Type{clientcertificate.ECDSASign}
}

func certificateRequestSignatureAlgorithms(cfg *handshakeConfig) []signaturehash.Algorithm {
	return clientHelloSignatureHashAlgorithms(cfg)
}
