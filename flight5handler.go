// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/x509"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// flight5generate is the client's response to the server's ServerHello
// through ServerHelloDone: it completes the key exchange, derives the
// master secret (unless resumed, in which case it is already known),
// and sends its own Certificate/ClientKeyExchange/CertificateVerify
// followed by ChangeCipherSpec and Finished. Certificate,
// ClientKeyExchange and CertificateVerify are omitted when resuming a
// session, mirroring the trim flight4generate applies on the server.
func flight5generate(
	_ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) ([]*packet, *alert.Alert, error) {
	resumed := len(state.masterSecret) > 0

	pkts := []*packet{}

	if !resumed {
		_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
			handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, false, true},
			handshakeCachePullRule{handshake.TypeServerKeyExchange, cfg.initialEpoch, false, true},
			handshakeCachePullRule{handshake.TypeCertificateRequest, cfg.initialEpoch, false, true},
		)
		if !ok {
			return nil, nil, nil
		}

		var preMasterSecret []byte
		var clientKeyExchangePublic []byte
		var clientKeyExchangeIdentity []byte

		switch state.cipherSuite.KeyExchangeAlgorithm() {
		case CipherSuiteKeyExchangeAlgorithmEcdhe:
			ske, ok := msgs[handshake.TypeServerKeyExchange].(*handshake.MessageServerKeyExchange)
			if !ok {
				return nil, nil, nil
			}

			if serverCert, ok := msgs[handshake.TypeCertificate].(*handshake.MessageCertificate); ok && len(serverCert.Certificate) > 0 {
				localRandom := state.localRandom
				remoteRandom := state.remoteRandom
				msg := valueKeyMessage(localRandom.MarshalFixed()[:], remoteRandom.MarshalFixed()[:], ske.PublicKey, uint16(ske.NamedCurve))
				if err := verifyKeySignature(msg, ske.Signature, ske.HashAlgorithm, serverCert.Certificate); err != nil {
					return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
				}
				if !cfg.insecureSkipVerify {
					chain, err := verifyPeerCertificate(serverCert.Certificate, cfg.rootCAs, state.serverName)
					if err != nil {
						return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
					}
					if cfg.verifyPeerCertificate != nil {
						if err := cfg.verifyPeerCertificate(serverCert.Certificate, [][]*x509.Certificate{chain}); err != nil {
							return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
						}
					}
					state.setPeerCertificatesVerified(true)
				}
				state.PeerCertificates = serverCert.Certificate
			}

			state.namedCurve = ske.NamedCurve
			keypair, err := elliptic.GenerateKeypair(state.namedCurve)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
			state.localKeypair = keypair
			clientKeyExchangePublic = keypair.PublicKey

			preMasterSecret, err = keypair.SharedSecret(ske.PublicKey)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
		case CipherSuiteKeyExchangeAlgorithmPsk:
			ske, _ := msgs[handshake.TypeServerKeyExchange].(*handshake.MessageServerKeyExchange)
			var identityHint []byte
			if ske != nil {
				identityHint = ske.IdentityHint
			}
			state.IdentityHint = identityHint
			psk, err := cfg.localPSKCallback(identityHint)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
			preMasterSecret = pskPreMasterSecret(psk)
			clientKeyExchangeIdentity = cfg.localPSKIdentityHint
		}

		state.preMasterSecret = preMasterSecret

		certReq, clientAuthRequested := msgs[handshake.TypeCertificateRequest].(*handshake.MessageCertificateRequest)

		if clientAuthRequested {
			cert, err := cfg.getClientCertificate(&CertificateRequestInfo{AcceptableCAs: certReq.CertificateAuthoritiesNames})
			if err != nil || cert == nil || len(cert.Certificate) == 0 {
				pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
					Header:  recordlayer.Header{Version: protocol.Version1_2},
					Content: &handshake.Handshake{Message: &handshake.MessageCertificate{}},
				}})
			} else {
				pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
					Header:  recordlayer.Header{Version: protocol.Version1_2},
					Content: &handshake.Handshake{Message: &handshake.MessageCertificate{Certificate: cert.Certificate}},
				}})
			}

			pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
				Header: recordlayer.Header{Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: &handshake.MessageClientKeyExchange{
					PublicKey: clientKeyExchangePublic,
				}},
			}})

			if cert != nil && cert.PrivateKey != nil {
				signatureScheme, err := findMatchingSignatureScheme(certReq.SignatureHashAlgorithms, cert.PrivateKey)
				if err != nil {
					return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, err
				}
				transcript := cache.pullAndMerge(
					handshakeCachePullRule{handshake.TypeClientHello, cfg.initialEpoch, true, false},
					handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, false},
					handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeServerKeyExchange, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeCertificateRequest, cfg.initialEpoch, false, true},
					handshakeCachePullRule{handshake.TypeServerHelloDone, cfg.initialEpoch, false, false},
				)
				signature, err := generateCertificateVerify(transcript, cert.PrivateKey, signatureScheme.Hash)
				if err != nil {
					return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
				}
				state.localCertificatesVerify = signature
				pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
					Header: recordlayer.Header{Version: protocol.Version1_2},
					Content: &handshake.Handshake{Message: &handshake.MessageCertificateVerify{
						HashAlgorithm:      signatureScheme.Hash,
						SignatureAlgorithm: signatureScheme.Signature,
						Signature:          signature,
					}},
				}})
			}
		} else {
			pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
				Header: recordlayer.Header{Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: &handshake.MessageClientKeyExchange{
					PublicKey:    clientKeyExchangePublic,
					IdentityHint: clientKeyExchangeIdentity,
				}},
			}})
		}

		localRandom := state.localRandom
		remoteRandom := state.remoteRandom
		if state.extendedMasterSecret {
			sessionHash, err := cache.sessionHash(state.cipherSuite.HashFunc(), cfg.initialEpoch)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
			state.masterSecret, err = prf.ExtendedMasterSecret(preMasterSecret, sessionHash, state.cipherSuite.HashFunc())
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
		} else {
			var err error
			state.masterSecret, err = prf.MasterSecret(
				preMasterSecret, localRandom.MarshalFixed()[:], remoteRandom.MarshalFixed()[:], state.cipherSuite.HashFunc(),
			)
			if err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
		}

		if err := state.cipherSuite.Init(state.masterSecret, localRandom.MarshalFixed()[:], remoteRandom.MarshalFixed()[:], true); err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}

		cfg.writeKeyLog(keyLogLabelTLS12, localRandom.MarshalFixed()[:], state.masterSecret)

		if cfg.sessionStore != nil && len(state.SessionID) > 0 {
			_ = cfg.sessionStore.Set(state.SessionID, Session{ID: state.SessionID, Secret: state.masterSecret})
		}
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
	verifyData, err := prf.VerifyDataClient(state.masterSecret, transcript, state.cipherSuite.HashFunc())
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	state.localVerifyData = verifyData

	pkts = append(pkts,
		&packet{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2},
				Content: &protocol.ChangeCipherSpec{},
			},
		},
		&packet{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Epoch: 1, Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: &handshake.MessageFinished{VerifyData: verifyData}},
			},
			shouldEncrypt: true,
		},
	)

	return pkts, nil, nil
}

// flight5parse waits for the server's ChangeCipherSpec and Finished,
// verifying the server's verify_data against the transcript seen so
// far. Matching pion's FSM, reaching this point with a valid Finished
// means the handshake itself is complete: flight5parse then returns
// flight5, for which flightVal.isLastRecvFlight reports true, so the
// FSM finishes rather than preparing another flight.
func flight5parse(
	_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeFinished, cfg.initialEpoch + 1, false, false},
	)
	if !ok {
		return 0, nil, nil
	}

	finished, ok := msgs[handshake.TypeFinished].(*handshake.MessageFinished)
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
	expected, err := prf.VerifyDataServer(state.masterSecret, transcript, state.cipherSuite.HashFunc())
	if err != nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if !bytesEqualConstantTime(expected, finished.VerifyData) {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errVerifyDataMismatch
	}

	return flight5, nil, nil
}
