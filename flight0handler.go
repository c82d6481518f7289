// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/extension"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
)

// flight0generate has nothing to send: the server's FSM starts in
// handshakePreparing for flight0, sends this empty flight, and then
// waits for a ClientHello.
func flight0generate(flightConn, *State, *handshakeCache, *handshakeConfig) ([]*packet, *alert.Alert, error) {
	return nil, nil, nil
}

// flight0parse is the server's ClientHello parser. It backs both
// flight0 (the very first ClientHello, which may lack a cookie) and
// flight2 (the cookie-echoing retry), since the wire message is the
// same in both cases and only the cookie check differs.
func flight0parse(
	_ context.Context, c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeClientHello, cfg.initialEpoch, true, false},
	)
	if !ok {
		// No ClientHello yet (or not fully reassembled); keep waiting.
		return 0, nil, nil
	}

	clientHello, ok := msgs[handshake.TypeClientHello].(*handshake.MessageClientHello)
	if !ok {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, errInvalidFlight
	}

	if cfg.onFlightState != nil {
		// no-op hook placeholder retained for parity with prepare/send logging
		_ = cfg.onFlightState
	}

	state.remoteRandom = clientHello.Random
	if len(clientHello.SessionID) > 0 {
		state.SessionID = clientHello.SessionID
	}

	if !cfg.insecureSkipHelloVerify {
		if len(state.cookie) == 0 {
			// First sighting of this ClientHello: remember its randomness
			// isn't enough to prove the client owns its claimed source
			// address, so challenge it with a fresh cookie.
			state.cookie = make([]byte, cookieLength)
			if _, err := rand.Read(state.cookie); err != nil {
				return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
			}
			return flight2, nil, nil
		}

		if len(clientHello.Cookie) == 0 {
			// Retransmitted initial ClientHello; resend the HelloVerifyRequest.
			return flight2, nil, nil
		}

		if !bytesEqualConstantTime(clientHello.Cookie, state.cookie) {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.AccessDenied}, errCookieMismatch
		}
	}

	// Unmarshal keeps only recognized (NULL) compression methods, so an
	// empty list means the client did not offer NULL.
	if len(clientHello.CompressionMethods) == 0 {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure},
			&FatalError{Err: errors.New("client did not offer the NULL compression method")}
	}

	for _, id := range clientHello.CipherSuiteIDs {
		for _, suite := range cfg.localCipherSuites {
			if uint16(suite.ID()) == id {
				state.cipherSuite = suite
				break
			}
		}
		if state.cipherSuite != nil {
			break
		}
	}
	if state.cipherSuite == nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errServerHelloInvalidCipherSuite
	}

	for _, e := range clientHello.Extensions {
		switch ext := e.(type) {
		case *extension.ServerName:
			state.serverName = ext.ServerName
		case *extension.ALPN:
			state.peerSupportedProtocols = ext.ProtocolNameList
			for _, local := range cfg.supportedProtocols {
				for _, remote := range ext.ProtocolNameList {
					if local == remote {
						state.NegotiatedProtocol = local
					}
				}
			}
		case *extension.UseExtendedMasterSecret:
			state.extendedMasterSecret = cfg.extendedMasterSecret != DisableExtendedMasterSecret
		case *extension.UseSRTP:
			for _, local := range cfg.localSRTPProtectionProfiles {
				for _, remote := range ext.ProtectionProfiles {
					if local == remote {
						state.setSRTPProtectionProfile(local)
					}
				}
			}
			state.remoteSRTPMasterKeyIdentifier = ext.MKI
		case *extension.SupportedEllipticCurves:
			for _, c := range ext.EllipticCurves {
				if curveSupported(cfg.ellipticCurves, c) {
					state.namedCurve = c
					break
				}
			}
		}
	}
	if state.namedCurve == 0 && state.cipherSuite.ECC() {
		state.namedCurve = defaultNamedCurve
	}

	if cfg.extendedMasterSecret == RequireExtendedMasterSecret && !state.extendedMasterSecret {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errUnsupportedExtendedMasterSecret
	}

	if cfg.connectionIDGenerator != nil {
		state.setLocalConnectionID(cfg.connectionIDGenerator())
	}
	state.remoteConnectionID = nil
	for _, e := range clientHello.Extensions {
		if cid, ok := e.(*extension.ConnectionID); ok {
			state.remoteConnectionID = cid.CID
		}
	}

	if err := state.localRandom.Populate(); err != nil {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	if state.cipherSuite.ECC() {
		keypair, err := elliptic.GenerateKeypair(state.namedCurve)
		if err != nil {
			return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
		state.localKeypair = keypair
	}

	c.setLocalEpoch(0)

	return flight4, nil, nil
}

func curveSupported(supported []elliptic.Curve, c elliptic.Curve) bool {
	for _, s := range supported {
		if s == c {
			return true
		}
	}
	return false
}

func bytesEqualConstantTime(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
