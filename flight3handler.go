// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/extension"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

func flight3generate(_ flightConn, state *State, _ *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	msg, err := buildClientHello(state, cfg, state.cookie)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	return []*packet{
		{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: msg},
			},
		},
	}, nil, nil
}

// flight3parse is the client's parser for the server's ServerHello
// through ServerHelloDone. It negotiates the cipher suite/extensions
// the server chose and, when the server echoed a SessionID this
// client previously stored, loads the resumed master secret so
// flight5generate can skip re-authentication.
func flight3parse(
	_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, false},
	)
	if !ok {
		return 0, nil, nil
	}

	serverHello, ok := msgs[handshake.TypeServerHello].(*handshake.MessageServerHello)
	if !ok {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, errInvalidFlight
	}

	if serverHello.CipherSuiteID == nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errServerHelloInvalidCipherSuite
	}
	suite := cipherSuiteForID(CipherSuiteID(*serverHello.CipherSuiteID), cfg.customCipherSuites)
	if suite == nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errInvalidCipherSuite
	}
	state.cipherSuite = suite
	state.remoteRandom = serverHello.Random

	for _, e := range serverHello.Extensions {
		applyServerHelloExtension(state, e)
	}

	if cfg.extendedMasterSecret == RequireExtendedMasterSecret && !state.extendedMasterSecret {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errUnsupportedExtendedMasterSecret
	}

	resumed := false
	if cfg.sessionStore != nil && len(state.SessionID) > 0 && len(serverHello.SessionID) > 0 &&
		bytesEqualConstantTime(state.SessionID, serverHello.SessionID) {
		if session, err := cfg.sessionStore.Get(state.SessionID); err == nil && len(session.Secret) > 0 {
			state.masterSecret = session.Secret
			resumed = true
		}
	}
	state.SessionID = serverHello.SessionID

	if !resumed {
		// Wait for the rest of the certificate-based flight (Certificate,
		// ServerKeyExchange, CertificateRequest, ServerHelloDone) which
		// flight5generate consumes from the cache directly; nothing more
		// to extract here.
		_, done, ok := cache.fullPullMap(0, state.cipherSuite,
			handshakeCachePullRule{handshake.TypeServerHelloDone, cfg.initialEpoch, false, false},
		)
		if !ok || done[handshake.TypeServerHelloDone] == nil {
			if suite.AuthenticationType() == CipherSuiteAuthenticationTypeCertificate ||
				suite.KeyExchangeAlgorithm() == CipherSuiteKeyExchangeAlgorithmEcdhe {
				return 0, nil, nil
			}
		}
	}

	if resumed {
		localRandom := state.localRandom
		remoteRandom := state.remoteRandom
		if err := state.cipherSuite.Init(state.masterSecret, localRandom.MarshalFixed()[:], remoteRandom.MarshalFixed()[:], true); err != nil {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
	}

	return flight5, nil, nil
}

func applyServerHelloExtension(state *State, e extension.Extension) {
	switch ext := e.(type) {
	case *extension.UseExtendedMasterSecret:
		state.extendedMasterSecret = ext.Supported
	case *extension.ALPN:
		if len(ext.ProtocolNameList) > 0 {
			state.NegotiatedProtocol = ext.ProtocolNameList[0]
		}
	case *extension.UseSRTP:
		if len(ext.ProtectionProfiles) > 0 {
			state.setSRTPProtectionProfile(ext.ProtectionProfiles[0])
		}
		state.remoteSRTPMasterKeyIdentifier = ext.MKI
	case *extension.ConnectionID:
		state.remoteConnectionID = ext.CID
	}
}
