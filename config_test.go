// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"math/big"
	"testing"
	"time"
)

func generateSelfSignedECDSACert(t *testing.T) tls.Certificate {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
}

func TestValidateConfig(t *testing.T) {
	cert := generateSelfSignedECDSACert(t)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	cases := map[string]struct {
		config *Config
		expErr error
	}{
		"Empty config": {
			expErr: errNoConfigProvided,
		},
		"PSK identity hint without PSK callback": {
			config: &Config{PSKIdentityHint: []byte("hint")},
			expErr: errPSKAndIdentityMustBeSetForServer,
		},
		"Valid PSK-only config": {
			config: &Config{
				CipherSuites: []CipherSuiteID{TLS_PSK_WITH_AES_128_GCM_SHA256},
				PSK:          func([]byte) ([]byte, error) { return []byte("secret"), nil },
			},
		},
		"Valid certificate-only config": {
			config: &Config{
				CipherSuites: []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384},
				Certificates: []tls.Certificate{cert},
			},
		},
		"Certificate with a nil chain": {
			config: &Config{
				Certificates: []tls.Certificate{{}},
			},
			expErr: errNoCertificates,
		},
		"Certificate with an unsupported private key type": {
			config: &Config{
				Certificates: []tls.Certificate{{Certificate: cert.Certificate, PrivateKey: rsaKey}},
			},
			expErr: errInvalidCipherSuite,
		},
		"PSK and certificate cipher suites but no PSK suite listed": {
			config: &Config{
				CipherSuites: []CipherSuiteID{TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384},
				PSK:          func([]byte) ([]byte, error) { return []byte("secret"), nil },
				Certificates: []tls.Certificate{cert},
			},
			expErr: errNoAvailablePSKCipherSuite,
		},
		"Unknown cipher suite ID": {
			config: &Config{CipherSuites: []CipherSuiteID{0x0000}},
			expErr: errInvalidCipherSuite,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			err := validateConfig(testCase.config)
			if testCase.expErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, testCase.expErr) {
				t.Fatalf("expected error %v, got %v", testCase.expErr, err)
			}
		})
	}
}
