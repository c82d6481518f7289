// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/rand"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/extension"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// sessionResumed reports whether cfg's session store holds a master
// secret for state.SessionID, loading it into state.masterSecret if
// so. Only the server's flight4generate calls this; the client's
// flight3parse runs its own resumption check. A resumed handshake still runs the flight4-6 message exchange, only
// trimming the certificate/key-exchange messages out of it (see
// flight.go).
func sessionResumed(state *State, cfg *handshakeConfig) bool {
	if cfg.sessionStore == nil || len(state.SessionID) == 0 {
		return false
	}
	session, err := cfg.sessionStore.Get(state.SessionID)
	if err != nil || len(session.Secret) == 0 {
		return false
	}
	state.masterSecret = session.Secret
	return true
}

// flight4generate builds the server's ServerHello through
// ServerHelloDone. Certificate, ServerKeyExchange and
// CertificateRequest are omitted when the session is resumed, since
// the master secret is already known and no new key material or
// re-authentication is required.
func flight4generate(
	_ flightConn, state *State, _ *handshakeCache, cfg *handshakeConfig,
) ([]*packet, *alert.Alert, error) {
	resumed := sessionResumed(state, cfg)

	// A fresh (non-resumed) session always gets its own server-chosen
	// ID, even if the client offered one of its own: echoing an
	// unrecognized client-supplied ID back as the basis for a brand
	// new session would let unrelated clients collide on the same
	// session-store key.
	if !resumed && cfg.sessionStore != nil {
		id := make([]byte, sessionLength)
		if _, err := rand.Read(id); err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
		state.SessionID = id
	}

	idValue := uint16(state.cipherSuite.ID())
	serverHello := &handshake.MessageServerHello{
		Version:           protocol.Version1_2,
		Random:            state.localRandom,
		SessionID:         state.SessionID,
		CipherSuiteID:     &idValue,
		CompressionMethod: protocol.DefaultCompressionMethods()[0],
		Extensions:        serverHelloExtensions(state, cfg),
	}
	if cfg.serverHelloMessageHook != nil {
		if m, ok := cfg.serverHelloMessageHook(*serverHello).(*handshake.MessageServerHello); ok {
			serverHello = m
		}
	}

	pkts := []*packet{
		{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2},
			Content: &handshake.Handshake{Message: serverHello},
		}},
	}

	if resumed {
		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2},
			Content: &handshake.Handshake{Message: &handshake.MessageServerHelloDone{}},
		}})
		return pkts, nil, nil
	}

	if state.cipherSuite.AuthenticationType() == CipherSuiteAuthenticationTypeCertificate {
		cert, err := cfg.getCertificate(&ClientHelloInfo{ServerName: state.serverName})
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
		}

		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2},
			Content: &handshake.Handshake{Message: &handshake.MessageCertificate{Certificate: cert.Certificate}},
		}})

		if state.cipherSuite.ECC() {
			keypair := state.localKeypair
			if keypair == nil {
				var err error
				keypair, err = elliptic.GenerateKeypair(state.namedCurve)
				if err != nil {
					return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
				}
				state.localKeypair = keypair
			}

			signatureScheme, err := findMatchingSignatureScheme(clientHelloSignatureHashAlgorithms(cfg), cert.PrivateKey)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, err
			}

			localRandom := state.localRandom
			remoteRandom := state.remoteRandom
			signature, err := generateKeySignature(
				remoteRandom.MarshalFixed()[:], localRandom.MarshalFixed()[:],
				keypair.PublicKey, uint16(state.namedCurve), cert.PrivateKey, signatureScheme.Hash,
			)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}

			pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
				Header: recordlayer.Header{Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: &handshake.MessageServerKeyExchange{
					EllipticCurveType:  3,
					NamedCurve:         state.namedCurve,
					PublicKey:          keypair.PublicKey,
					HashAlgorithm:      signatureScheme.Hash,
					SignatureAlgorithm: signatureScheme.Signature,
					Signature:          signature,
				}},
			}})
		}

		if cfg.clientAuth >= RequestClientCert {
			certReq := &handshake.MessageCertificateRequest{
				CertificateTypes:        clientCertificateTypes(),
				SignatureHashAlgorithms: certificateRequestSignatureAlgorithms(cfg),
			}
			if cfg.clientCAs != nil {
				certReq.CertificateAuthoritiesNames = cfg.clientCAs.Subjects() //nolint:staticcheck
			}
			if cfg.certificateRequestMessageHook != nil {
				if m, ok := cfg.certificateRequestMessageHook(*certReq).(*handshake.MessageCertificateRequest); ok {
					certReq = m
				}
			}
			pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: certReq},
			}})
		}
	} else if state.cipherSuite.KeyExchangeAlgorithm() == CipherSuiteKeyExchangeAlgorithmPsk {
		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header: recordlayer.Header{Version: protocol.Version1_2},
			Content: &handshake.Handshake{Message: &handshake.MessageServerKeyExchange{
				IdentityHint: cfg.localPSKIdentityHint,
			}},
		}})
	}

	pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_2},
		Content: &handshake.Handshake{Message: &handshake.MessageServerHelloDone{}},
	}})

	return pkts, nil, nil
}

// flight4parse is the server's parser for the client's
// ClientKeyExchange/Certificate/CertificateVerify/ChangeCipherSpec/
// Finished. On a resumed session only ChangeCipherSpec+Finished are
// expected, since the master secret is already known.
func flight4parse(
	_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	resumed := len(state.masterSecret) > 0

	if !resumed {
		_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
			handshakeCachePullRule{handshake.TypeClientKeyExchange, cfg.initialEpoch, true, false},
			handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, true, true},
			handshakeCachePullRule{handshake.TypeCertificateVerify, cfg.initialEpoch, true, true},
		)
		if !ok {
			return 0, nil, nil
		}

		cke, ok := msgs[handshake.TypeClientKeyExchange].(*handshake.MessageClientKeyExchange)
		if !ok {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, errInvalidFlight
		}

		var preMasterSecret []byte
		var err error
		switch state.cipherSuite.KeyExchangeAlgorithm() {
		case CipherSuiteKeyExchangeAlgorithmEcdhe:
			preMasterSecret, err = state.localKeypair.SharedSecret(cke.PublicKey)
		case CipherSuiteKeyExchangeAlgorithmPsk:
			// MessageClientKeyExchange.Unmarshal cannot tell a PSK
			// identity from an ECDHE public key apart; for PSK suites
			// the length-prefixed body it decoded into PublicKey is
			// actually the identity.
			var psk []byte
			psk, err = cfg.localPSKCallback(cke.PublicKey)
			if err == nil {
				preMasterSecret = pskPreMasterSecret(psk)
				state.IdentityHint = cke.PublicKey
			}
		}
		if err != nil {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
		state.preMasterSecret = preMasterSecret

		if cert, ok := msgs[handshake.TypeCertificate].(*handshake.MessageCertificate); ok && len(cert.Certificate) > 0 {
			if cfg.clientAuth >= VerifyClientCertIfGiven {
				chain, err := verifyPeerCertificate(cert.Certificate, cfg.clientCAs, "")
				if err != nil {
					return 0, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
				}
				_ = chain
				state.setPeerCertificatesVerified(true)
			}
			state.PeerCertificates = cert.Certificate

			if cv, ok := msgs[handshake.TypeCertificateVerify].(*handshake.MessageCertificateVerify); ok {
				transcript := cache.pullAndMerge(
					handshakeCachePullRule{handshake.TypeClientHello, cfg.initialEpoch, true, false},
					handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, false},
					handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeServerKeyExchange, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeCertificateRequest, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeServerHelloDone, cfg.initialEpoch, false, false},
					handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, true, false},
					handshakeCachePullRule{handshake.TypeClientKeyExchange, cfg.initialEpoch, true, false},
				)
				if err := verifyCertificateVerify(transcript, cv.HashAlgorithm, cv.Signature, cert.Certificate); err != nil {
					return 0, &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, err
				}
			} else if cfg.clientAuth >= RequireAnyClientCert {
				return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errCertificateVerifyNoSignature
			}
		} else if cfg.clientAuth == RequireAnyClientCert || cfg.clientAuth == RequireAndVerifyClientCert {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errClientCertificateRequired
		}

		localRandom := state.localRandom
		remoteRandom := state.remoteRandom
		if state.extendedMasterSecret {
			sessionHash, err := cache.sessionHash(state.cipherSuite.HashFunc(), cfg.initialEpoch)
			if err != nil {
				return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
			state.masterSecret, err = prf.ExtendedMasterSecret(preMasterSecret, sessionHash, state.cipherSuite.HashFunc())
			if err != nil {
				return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
		} else {
			var err error
			state.masterSecret, err = prf.MasterSecret(
				preMasterSecret, remoteRandom.MarshalFixed()[:], localRandom.MarshalFixed()[:], state.cipherSuite.HashFunc(),
			)
			if err != nil {
				return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
		}

		if err := state.cipherSuite.Init(state.masterSecret, remoteRandom.MarshalFixed()[:], localRandom.MarshalFixed()[:], false); err != nil {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}

		cfg.writeKeyLog(keyLogLabelTLS12, remoteRandom.MarshalFixed()[:], state.masterSecret)

		if cfg.sessionStore != nil && len(state.SessionID) > 0 {
			_ = cfg.sessionStore.Set(state.SessionID, Session{ID: state.SessionID, Secret: state.masterSecret})
		}
	}

	_, ccsMsgs, ok := cache.fullPullMap(0, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeFinished, cfg.initialEpoch + 1, true, false},
	)
	if !ok {
		return 0, nil, nil
	}

	finished, ok := ccsMsgs[handshake.TypeFinished].(*handshake.MessageFinished)
	if !ok {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, errInvalidFlight
	}

	transcript := cache.pullAndMerge(
		handshakeCachePullRule{handshake.TypeClientHello, cfg.initialEpoch, true, false},
		handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, false},
		handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeServerKeyExchange, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeCertificateRequest, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeServerHelloDone, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, true, true},
		handshakeCachePullRule{handshake.TypeClientKeyExchange, cfg.initialEpoch, true, true},
		handshakeCachePullRule{handshake.TypeCertificateVerify, cfg.initialEpoch, true, true},
	)
	expected, err := prf.VerifyDataClient(state.masterSecret, transcript, state.cipherSuite.HashFunc())
	if err != nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if !bytesEqualConstantTime(expected, finished.VerifyData) {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errVerifyDataMismatch
	}

	return flight6, nil, nil
}

// serverHelloExtensions builds the server's answering extension set:
// the extensions the client offered (as recorded on state by
// flight0parse) are echoed back, and the server's own connection ID is
// added whenever flight0parse generated one, whether or not the client
// sent a connection_id extension.
func serverHelloExtensions(state *State, cfg *handshakeConfig) []extension.Extension {
	extensions := []extension.Extension{
		&extension.RenegotiationInfo{RenegotiatedConnection: []byte{}},
	}

	if state.extendedMasterSecret {
		extensions = append(extensions, &extension.UseExtendedMasterSecret{Supported: true})
	}
	if state.NegotiatedProtocol != "" {
		extensions = append(extensions, &extension.ALPN{ProtocolNameList: []string{state.NegotiatedProtocol}})
	}
	if state.getSRTPProtectionProfile() != 0 {
		extensions = append(extensions, &extension.UseSRTP{
			ProtectionProfiles: []SRTPProtectionProfile{state.getSRTPProtectionProfile()},
			MKI:                cfg.localSRTPMasterKeyIdentifier,
		})
	}
	if len(state.localConnectionID) > 0 {
		extensions = append(extensions, &extension.ConnectionID{CID: state.localConnectionID})
	}

	return extensions
}
