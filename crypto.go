// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"

	"github.com/coreshift/dtls/v2/pkg/crypto/hash"
	"github.com/coreshift/dtls/v2/pkg/crypto/signature"
	"github.com/coreshift/dtls/v2/pkg/crypto/signaturehash"
)

// valueKeyMessage builds the byte string a ServerKeyExchange signature
// covers: the two hello randoms followed by the raw key exchange
// parameters.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.3
func valueKeyMessage(clientRandom, serverRandom, publicKey []byte, namedCurve uint16) []byte {
	serverECDHParams := make([]byte, 4)
	serverECDHParams[0] = 3 // named_curve
	serverECDHParams[1] = byte(namedCurve >> 8)
	serverECDHParams[2] = byte(namedCurve)
	serverECDHParams[3] = byte(len(publicKey))

	plaintext := []byte{}
	plaintext = append(plaintext, clientRandom...)
	plaintext = append(plaintext, serverRandom...)
	plaintext = append(plaintext, serverECDHParams...)
	return append(plaintext, publicKey...)
}

// generateKeySignature signs the key exchange parameters with
// privateKey using hashAlgorithm, for the certificate-based
// ServerKeyExchange.
func generateKeySignature(
	clientRandom, serverRandom, publicKey []byte, namedCurve uint16,
	privateKey crypto.PrivateKey, hashAlgorithm hash.Algorithm,
) ([]byte, error) {
	msg := valueKeyMessage(clientRandom, serverRandom, publicKey, namedCurve)
	return signWithHash(privateKey, hashAlgorithm, msg)
}

func signWithHash(privateKey crypto.PrivateKey, hashAlgorithm hash.Algorithm, msg []byte) ([]byte, error) {
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, errKeySignatureGenerateFailed
	}

	if _, ok := signer.Public().(ed25519.PublicKey); ok {
		return signer.Sign(rand.Reader, msg, crypto.Hash(0))
	}

	h := hashAlgorithm.CryptoHash().New()
	if _, err := h.Write(msg); err != nil {
		return nil, err
	}
	return signer.Sign(rand.Reader, h.Sum(nil), hashAlgorithm.CryptoHash())
}

// verifyKeySignature checks a certificate-based ServerKeyExchange
// signature against the leaf certificate's public key.
func verifyKeySignature(message []byte, remoteKeySignature []byte, hashAlgorithm hash.Algorithm, rawCertificates [][]byte) error {
	if len(rawCertificates) == 0 {
		return errLengthMismatch
	}
	cert, err := x509.ParseCertificate(rawCertificates[0])
	if err != nil {
		return err
	}

	switch pub := cert.PublicKey.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(pub, message, remoteKeySignature) {
			return errKeySignatureVerifyFailed
		}
		return nil
	case *ecdsa.PublicKey:
		h := hashAlgorithm.CryptoHash().New()
		if _, err := h.Write(message); err != nil {
			return err
		}
		if !ecdsa.VerifyASN1(pub, h.Sum(nil), remoteKeySignature) {
			return errKeySignatureVerifyFailed
		}
		return nil
	default:
		return errKeySignatureVerifyFailed
	}
}

// generateCertificateVerify signs the running handshake transcript
// hash for the CertificateVerify message a client sends after its own
// Certificate, proving possession of the corresponding private key.
func generateCertificateVerify(handshakeBodies []byte, privateKey crypto.PrivateKey, hashAlgorithm hash.Algorithm) ([]byte, error) {
	return signWithHash(privateKey, hashAlgorithm, handshakeBodies)
}

func verifyCertificateVerify(handshakeBodies []byte, hashAlgorithm hash.Algorithm, remoteKeySignature []byte, rawCertificates [][]byte) error {
	return verifyKeySignature(handshakeBodies, remoteKeySignature, hashAlgorithm, rawCertificates)
}

// pskPreMasterSecret builds the PSK pre_master_secret (RFC 4279
// Section 2): a run of zero bytes as long as the PSK, then the PSK
// itself, each half length-prefixed.
func pskPreMasterSecret(psk []byte) []byte {
	out := make([]byte, 0, 4+2*len(psk))
	out = append(out, byte(len(psk)>>8), byte(len(psk)))
	out = append(out, make([]byte, len(psk))...)
	out = append(out, byte(len(psk)>>8), byte(len(psk)))
	out = append(out, psk...)
	return out
}

// loadCerts raw-encodes a certificate chain for the wire, leaf first.
func loadCerts(rawCertificates [][]byte) [][]byte {
	return rawCertificates
}

func clientHelloSignatureHashAlgorithms(cfg *handshakeConfig) []signaturehash.Algorithm {
	if len(cfg.localSignatureSchemes) > 0 {
		return cfg.localSignatureSchemes
	}
	return signaturehash.Algorithms()
}

func findMatchingSignatureScheme(
	remote []signaturehash.Algorithm, privateKey crypto.PrivateKey,
) (signaturehash.Algorithm, error) {
	return signaturehash.SelectSignatureScheme(remote, privateKey)
}

// certTypeFor resolves the client certificate type octet sent in a
// CertificateRequest for privateKey's public key.
func certTypeFor(signerPublic crypto.PublicKey) signature.Algorithm {
	switch signerPublic.(type) {
	case ed25519.PublicKey:
		return signature.Ed25519
	default:
		return signature.ECDSA
	}
}
