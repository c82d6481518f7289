// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sync/atomic"

	"github.com/coreshift/dtls/v2/pkg/crypto/ciphersuite"
	"github.com/coreshift/dtls/v2/pkg/crypto/clientcertificate"
	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// TLSPskWithAes128GcmSha256 implements TLS_PSK_WITH_AES_128_GCM_SHA256:
// pre-shared-key authentication with no certificate exchange, AES-128-GCM
// record protection.
type TLSPskWithAes128GcmSha256 struct {
	gcm atomic.Value // *ciphersuite.GCM
}

// CertificateType returns what type of certificate this CipherSuite exchanges.
// PSK suites never exchange a certificate.
func (c *TLSPskWithAes128GcmSha256) CertificateType() clientcertificate.Type {
	return clientcertificate.Type(0)
}

// KeyExchangeAlgorithm controls what key exchange algorithm is used during the handshake.
func (c *TLSPskWithAes128GcmSha256) KeyExchangeAlgorithm() KeyExchangeAlgorithm {
	return KeyExchangeAlgorithmPsk
}

// ECC reports that this suite never sends the elliptic-curve extensions.
func (c *TLSPskWithAes128GcmSha256) ECC() bool {
	return false
}

// ID returns the ID of the CipherSuite.
func (c *TLSPskWithAes128GcmSha256) ID() ID {
	return TLS_PSK_WITH_AES_128_GCM_SHA256
}

func (c *TLSPskWithAes128GcmSha256) String() string {
	return "TLS_PSK_WITH_AES_128_GCM_SHA256"
}

// HashFunc returns the hash used for the PRF and the handshake transcript.
func (c *TLSPskWithAes128GcmSha256) HashFunc() func() hash.Hash {
	return sha256.New
}

// AuthenticationType controls what authentication method is used during the handshake.
func (c *TLSPskWithAes128GcmSha256) AuthenticationType() AuthenticationType {
	return AuthenticationTypePreSharedKey
}

// Init derives traffic keys from masterSecret and initializes the AEAD.
func (c *TLSPskWithAes128GcmSha256) Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	const (
		prfMacLen = 0
		prfKeyLen = 16
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
func (c *TLSPskWithAes128GcmSha256) IsInitialized() bool {
	return c.gcm.Load() != nil
}

// Encrypt seals a single record.
func (c *TLSPskWithAes128GcmSha256) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	gcm, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, fmt.Errorf("%w, unable to encrypt", errCipherSuiteNotInit)
	}

	return gcm.Encrypt(pkt, raw)
}

// Decrypt opens a single record.
func (c *TLSPskWithAes128GcmSha256) Decrypt(h recordlayer.Header, in []byte) ([]byte, error) {
	gcm, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, fmt.Errorf("%w, unable to decrypt", errCipherSuiteNotInit)
	}

	return gcm.Decrypt(h, in)
}
