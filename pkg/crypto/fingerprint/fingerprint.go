// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package fingerprint computes colon-separated hex digest strings for
// certificates and raw public keys, the form DTLS-SRTP signaling
// (SDP a=fingerprint) and identity pinning expect.
package fingerprint

import (
	"crypto"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"strings"
)

var errHashUnavailable = errors.New("fingerprint: hash algorithm is not linked into the binary")

// Fingerprint hashes cert.Raw with hash and renders it as colon-separated hex.
func Fingerprint(cert *x509.Certificate, hash crypto.Hash) (string, error) {
	return hashFingerprint(cert.Raw, hash)
}

// PublicKeyFingerprint hashes a certificate's DER-encoded
// SubjectPublicKeyInfo rather than the whole certificate, so two
// certificates issued over the same key pair produce the same
// fingerprint. It applies equally to a bare public key, which has no
// surrounding certificate to hash.
func PublicKeyFingerprint(spki []byte, hash crypto.Hash) (string, error) {
	return hashFingerprint(spki, hash)
}

func hashFingerprint(data []byte, hash crypto.Hash) (string, error) {
	if !hash.Available() {
		return "", errHashUnavailable
	}

	h := hash.New()
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	sum := h.Sum(nil)

	encoded := make([]string, len(sum))
	for i, b := range sum {
		encoded[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(encoded, ":"), nil
}
