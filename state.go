// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/x509"
	"sync"
	"sync/atomic"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/crypto/signaturehash"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/pion/transport/v3/replaydetector"
)

// State holds the negotiated parameters of a DTLS connection: cipher
// suite, keys, and everything derived from the handshake. A State
// obtained from Conn.ConnectionState is a point-in-time copy and is
// safe to read without further locking.
type State struct {
	localEpoch, remoteEpoch   atomic.Value
	localSequenceNumber       []uint64 // uint48, per epoch
	localRandom, remoteRandom handshake.Random
	isClient                  bool

	cipherSuite CipherSuite // nil until the handshake negotiates one

	masterSecret []byte
	// preMasterSecret is kept after the master secret is derived so that
	// GetHandshakeLog can report it.
	preMasterSecret []byte

	SessionID []byte

	handshakeSendSequence int
	handshakeRecvSequence int

	replayDetector []replaydetector.ReplayDetector

	PeerCertificates        [][]byte
	peerCertificatesVerified bool

	IdentityHint []byte

	SRTPProtectionProfile SRTPProtectionProfile // Negotiated SRTPProtectionProfile
	// 0 means no explicit profile was negotiated; call the getter/setter
	// pair so the zero value is distinguishable from "negotiated, 0".
	srtpProtectionProfileSet          bool
	remoteSRTPMasterKeyIdentifier     []byte

	extendedMasterSecret bool

	localConnectionID, remoteConnectionID []byte

	namedCurve     elliptic.Curve
	localKeypair   *elliptic.Keypair
	cookie         []byte
	serverName     string

	peerSupportedProtocols []string
	NegotiatedProtocol     string

	remoteCertRequestAlgs      []signaturehash.Algorithm
	remoteRequestedCertificate bool // Did we get a CertificateRequest

	localCertificatesVerify []byte // cache CertificateVerify
	localVerifyData         []byte // cached VerifyData

	mu sync.RWMutex
}

func (s *State) getLocalEpoch() uint16 {
	if v, ok := s.localEpoch.Load().(uint16); ok {
		return v
	}
	return 0
}

func (s *State) getRemoteEpoch() uint16 {
	if v, ok := s.remoteEpoch.Load().(uint16); ok {
		return v
	}
	return 0
}

func (s *State) setSRTPProtectionProfile(profile SRTPProtectionProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SRTPProtectionProfile = profile
	s.srtpProtectionProfileSet = true
}

func (s *State) getSRTPProtectionProfile() SRTPProtectionProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SRTPProtectionProfile
}

func (s *State) setLocalConnectionID(cid []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localConnectionID = cid
}

// initCipherSuite locks in the negotiated CipherSuite. Safe to call
// once; calling it again with a different suite is a programmer error.
func (s *State) initCipherSuite(suite CipherSuite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cipherSuite = suite
}

// clone returns a snapshot of s that is safe to hand to a caller
// through Conn.ConnectionState: every slice it carries over, including
// each peer certificate and the master secret, is copied, so the
// caller cannot observe (or corrupt) the live handshake state. Working
// state used only during the handshake (sequence numbers, replay
// detectors, keypair, cookie, cached verify data) is not carried over.
func (s *State) clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := &State{
		isClient:                  s.isClient,
		localRandom:               s.localRandom,
		remoteRandom:              s.remoteRandom,
		cipherSuite:                s.cipherSuite,
		SessionID:                 append([]byte{}, s.SessionID...),
		extendedMasterSecret:      s.extendedMasterSecret,
		SRTPProtectionProfile:     s.SRTPProtectionProfile,
		srtpProtectionProfileSet:  s.srtpProtectionProfileSet,
		peerCertificatesVerified:  s.peerCertificatesVerified,
		serverName:                s.serverName,
		NegotiatedProtocol:        s.NegotiatedProtocol,
		remoteRequestedCertificate: s.remoteRequestedCertificate,
	}
	cp.localEpoch.Store(s.getLocalEpoch())
	cp.remoteEpoch.Store(s.getRemoteEpoch())
	cp.PeerCertificates = make([][]byte, 0, len(s.PeerCertificates))
	for _, cert := range s.PeerCertificates {
		cp.PeerCertificates = append(cp.PeerCertificates, append([]byte{}, cert...))
	}
	cp.masterSecret = append([]byte{}, s.masterSecret...)
	cp.IdentityHint = append([]byte{}, s.IdentityHint...)
	cp.localConnectionID = append([]byte{}, s.localConnectionID...)
	cp.remoteConnectionID = append([]byte{}, s.remoteConnectionID...)
	cp.peerSupportedProtocols = append([]string{}, s.peerSupportedProtocols...)

	return cp
}

// ExportKeyingMaterial implements RFC 5705: it derives additional
// keying material from the current connection's master secret, for
// uses like SRTP key derivation or channel binding.
func (s *State) ExportKeyingMaterial(label string, context []byte, length int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.localEpoch.Load() == nil {
		return nil, errHandshakeInProgress
	} else if len(context) != 0 {
		return nil, errContextUnsupported
	} else if _, ok := invalidKeyingLabels[label]; ok {
		return nil, errReservedExportKeyingMaterial
	}

	localRandom := s.localRandom
	remoteRandom := s.remoteRandom
	seed := append(append([]byte{}, localRandom.MarshalFixed()[:]...), remoteRandom.MarshalFixed()[:]...)
	if !s.isClient {
		seed = append(append([]byte{}, remoteRandom.MarshalFixed()[:]...), localRandom.MarshalFixed()[:]...)
	}

	return prf.PHash(s.masterSecret, append([]byte(label), seed...), length, s.cipherSuite.HashFunc())
}

// PeerCertificatesVerified reports whether the peer's certificate
// chain was verified. It is false whenever no chain was verified:
// with InsecureSkipVerify, when the server accepts a client
// certificate without verifying it, or when the peer sent none.
func (s *State) PeerCertificatesVerified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peerCertificatesVerified
}

func (s *State) setPeerCertificatesVerified(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peerCertificatesVerified = v
}

// verifyPeerCertificate validates the leaf's chain against roots, and
// against serverName when acting as a client.
func verifyPeerCertificate(rawCertificates [][]byte, roots *x509.CertPool, serverName string) ([]*x509.Certificate, error) {
	certificates := make([]*x509.Certificate, 0, len(rawCertificates))
	for _, rawCert := range rawCertificates {
		cert, err := x509.ParseCertificate(rawCert)
		if err != nil {
			return nil, err
		}
		certificates = append(certificates, cert)
	}

	if len(certificates) == 0 {
		return nil, errLengthMismatch
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certificates[1:] {
		intermediates.AddCert(cert)
	}

	_, err := certificates[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		DNSName:       serverName,
	})

	return certificates, err
}
