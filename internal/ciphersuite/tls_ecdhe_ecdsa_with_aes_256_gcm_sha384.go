// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/sha512"
	"fmt"
	"hash"
	"sync/atomic"

	"github.com/coreshift/dtls/v2/pkg/crypto/ciphersuite"
	"github.com/coreshift/dtls/v2/pkg/crypto/clientcertificate"
	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// TLSEcdheEcdsaWithAes256GcmSha384 implements TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:
// certificate authentication, ephemeral ECDH key agreement, AES-256-GCM record protection.
type TLSEcdheEcdsaWithAes256GcmSha384 struct {
	gcm atomic.Value // *ciphersuite.GCM
}

// CertificateType returns what type of certificate this CipherSuite exchanges.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) CertificateType() clientcertificate.Type {
	return clientcertificate.ECDSASign
}

// KeyExchangeAlgorithm controls what key exchange algorithm is used during the handshake.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) KeyExchangeAlgorithm() KeyExchangeAlgorithm {
	return KeyExchangeAlgorithmEcdhe
}

// ECC reports that this suite sends supported_elliptic_curves/supported_point_formats.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) ECC() bool {
	return true
}

// ID returns the ID of the CipherSuite.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) ID() ID {
	return TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
}

func (c *TLSEcdheEcdsaWithAes256GcmSha384) String() string {
	return "TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384"
}

// HashFunc returns the hash used for the PRF and the handshake transcript.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) HashFunc() func() hash.Hash {
	return sha512.New384
}

// AuthenticationType controls what authentication method is used during the handshake.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) AuthenticationType() AuthenticationType {
	return AuthenticationTypeCertificate
}

// Init derives traffic keys from masterSecret and initializes the AEAD.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	const (
		prfMacLen = 0
		prfKeyLen = 32
		prfIvLen  = 4
	)

	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, prfMacLen, prfKeyLen, prfIvLen, c.HashFunc())
	if err != nil {
		return err
	}

	var gcm *ciphersuite.GCM
	if isClient {
		gcm, err = ciphersuite.NewGCM(keys.ClientWriteKey, keys.ClientWriteIV, keys.ServerWriteKey, keys.ServerWriteIV)
	} else {
		gcm, err = ciphersuite.NewGCM(keys.ServerWriteKey, keys.ServerWriteIV, keys.ClientWriteKey, keys.ClientWriteIV)
	}
	if err != nil {
		return err
	}
	c.gcm.Store(gcm)
	return nil
}

// IsInitialized reports whether Init has succeeded.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) IsInitialized() bool {
	return c.gcm.Load() != nil
}

// Encrypt seals a single record.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	gcm, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, fmt.Errorf("%w, unable to encrypt", errCipherSuiteNotInit)
	}

	return gcm.Encrypt(pkt, raw)
}

// Decrypt opens a single record.
func (c *TLSEcdheEcdsaWithAes256GcmSha384) Decrypt(h recordlayer.Header, in []byte) ([]byte, error) {
	gcm, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, fmt.Errorf("%w, unable to decrypt", errCipherSuiteNotInit)
	}

	return gcm.Decrypt(h, in)
}
