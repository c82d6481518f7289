// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package hash provides the hash.Algorithm enum used by TLS/DTLS
// signature_algorithms negotiation.
package hash

import (
	"crypto"
	//nolint:gosec
	_ "crypto/md5"
	//nolint:gosec
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Algorithm is the IANA HashAlgorithm enum.
//
// https://tools.ietf.org/html/rfc5246#appendix-A.4.1
type Algorithm uint16

const (
	None   Algorithm = 0
	MD5    Algorithm = 1 // Insecure
	SHA1   Algorithm = 2 // Insecure
	SHA224 Algorithm = 3
	SHA256 Algorithm = 4
	SHA384 Algorithm = 5
	SHA512 Algorithm = 6
	Ed25519 Algorithm = 8
)

// Algorithms returns the known hash algorithms.
func Algorithms() map[Algorithm]crypto.Hash {
	return map[Algorithm]crypto.Hash{
		MD5:     crypto.MD5,
		SHA1:    crypto.SHA1,
		SHA224:  crypto.SHA224,
		SHA256:  crypto.SHA256,
		SHA384:  crypto.SHA384,
		SHA512:  crypto.SHA512,
		Ed25519: 0,
	}
}

// Insecure reports whether the algorithm is considered cryptographically weak.
func (a Algorithm) Insecure() bool {
	switch a {
	case MD5, SHA1:
		return true
	default:
		return false
	}
}

// CryptoHash maps to the stdlib crypto.Hash, when one applies.
func (a Algorithm) CryptoHash() crypto.Hash {
	return Algorithms()[a]
}

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case SHA224:
		return "sha224"
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	case Ed25519:
		return "ed25519"
	default:
		return "unknown"
	}
}
