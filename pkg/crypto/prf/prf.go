// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package prf implements the TLS 1.2 pseudo-random function (RFC
// 5246 Section 5) and the concrete secret/key derivations built on
// top of it: pre-master secret from an ECDHE shared point, master
// secret, traffic key/IV expansion, and Finished verify_data.
package prf

import (
	"crypto/hmac"
	"hash"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
)

const (
	masterSecretLabel        = "master secret"
	extendedMasterSecretLabel = "extended master secret"
	keyExpansionLabel        = "key expansion"
	clientFinishedLabel      = "client finished"
	serverFinishedLabel      = "server finished"
	verifyDataLength         = 12
)

// PreMasterSecret computes the ECDHE shared secret used as the TLS
// pre_master_secret.
func PreMasterSecret(publicKey, privateKey []byte, curve elliptic.Curve) ([]byte, error) {
	return elliptic.SharedSecretFromRaw(curve, privateKey, publicKey)
}

// PHash implements P_hash from RFC 5246 Section 5: repeated HMAC
// expansion of secret and seed until at least the requested length is
// produced.
func PHash(secret, seed []byte, requestedLength int, hashFunc func() hash.Hash) ([]byte, error) {
	hmacHash := hmac.New(hashFunc, secret)

	if _, err := hmacHash.Write(seed); err != nil {
		return nil, err
	}
	aSum := hmacHash.Sum(nil)

	out := []byte{}
	for len(out) < requestedLength {
		hmacHash.Reset()
		if _, err := hmacHash.Write(aSum); err != nil {
			return nil, err
		}
		if _, err := hmacHash.Write(seed); err != nil {
			return nil, err
		}
		out = append(out, hmacHash.Sum(nil)...)

		hmacHash.Reset()
		if _, err := hmacHash.Write(aSum); err != nil {
			return nil, err
		}
		aSum = hmacHash.Sum(nil)
	}

	return out[:requestedLength], nil
}

// MasterSecret derives the 48-byte master_secret from the
// pre_master_secret and the hello randoms.
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, hashFunc func() hash.Hash) ([]byte, error) {
	seed := append(append([]byte(masterSecretLabel), clientRandom...), serverRandom...)
	return PHash(preMasterSecret, seed, 48, hashFunc)
}

// ExtendedMasterSecret derives master_secret per RFC 7627, binding it
// to the full handshake transcript hash instead of the two randoms.
func ExtendedMasterSecret(preMasterSecret, sessionHash []byte, hashFunc func() hash.Hash) ([]byte, error) {
	seed := append([]byte(extendedMasterSecretLabel), sessionHash...)
	return PHash(preMasterSecret, seed, 48, hashFunc)
}

// EncryptionKeys is the full set of traffic keys GenerateEncryptionKeys derives.
type EncryptionKeys struct {
	MasterSecret   []byte
	ClientMACKey   []byte
	ServerMACKey   []byte
	ClientWriteKey []byte
	ServerWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteIV  []byte
}

// GenerateEncryptionKeys expands master_secret into the traffic
// keying material an AEAD cipher suite's Init needs.
func GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom []byte, macLen, keyLen, ivLen int, hashFunc func() hash.Hash) (*EncryptionKeys, error) {
	// RFC 5246 Section 6.3: key_block's seed is server_random ||
	// client_random, the reverse order master_secret's seed uses.
	seed := append(append([]byte(keyExpansionLabel), serverRandom...), clientRandom...)

	keyMaterial, err := PHash(masterSecret, seed, (2*macLen)+(2*keyLen)+(2*ivLen), hashFunc)
	if err != nil {
		return nil, err
	}

	clientMACKey := keyMaterial[:macLen]
	keyMaterial = keyMaterial[macLen:]
	serverMACKey := keyMaterial[:macLen]
	keyMaterial = keyMaterial[macLen:]

	clientWriteKey := keyMaterial[:keyLen]
	keyMaterial = keyMaterial[keyLen:]
	serverWriteKey := keyMaterial[:keyLen]
	keyMaterial = keyMaterial[keyLen:]

	clientWriteIV := keyMaterial[:ivLen]
	keyMaterial = keyMaterial[ivLen:]
	serverWriteIV := keyMaterial[:ivLen]

	return &EncryptionKeys{
		MasterSecret:   masterSecret,
		ClientMACKey:   clientMACKey,
		ServerMACKey:   serverMACKey,
		ClientWriteKey: clientWriteKey,
		ServerWriteKey: serverWriteKey,
		ClientWriteIV:  clientWriteIV,
		ServerWriteIV:  serverWriteIV,
	}, nil
}

func verifyData(masterSecret, handshakeBodies []byte, label string, hashFunc func() hash.Hash) ([]byte, error) {
	h := hashFunc()
	if _, err := h.Write(handshakeBodies); err != nil {
		return nil, err
	}

	seed := append([]byte(label), h.Sum(nil)...)
	return PHash(masterSecret, seed, verifyDataLength, hashFunc)
}

// VerifyDataClient computes the client Finished verify_data.
func VerifyDataClient(masterSecret, handshakeBodies []byte, hashFunc func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, clientFinishedLabel, hashFunc)
}

// VerifyDataServer computes the server Finished verify_data.
func VerifyDataServer(masterSecret, handshakeBodies []byte, hashFunc func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, serverFinishedLabel, hashFunc)
}
