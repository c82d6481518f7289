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

// clientHelloExtensions builds the extension list a client offers in
// both the cookie-less and cookie-echoing ClientHello; the server
// answers from the same set either way.
func clientHelloExtensions(cfg *handshakeConfig, includeCertificateExtensions bool) []extension.Extension {
	extensions := []extension.Extension{
		&extension.RenegotiationInfo{RenegotiatedConnection: []byte{}},
	}

	if cfg.serverName != "" {
		extensions = append(extensions, &extension.ServerName{ServerName: cfg.serverName})
	}
	if len(cfg.supportedProtocols) > 0 {
		extensions = append(extensions, &extension.ALPN{ProtocolNameList: cfg.supportedProtocols})
	}
	if cfg.extendedMasterSecret != DisableExtendedMasterSecret {
		extensions = append(extensions, &extension.UseExtendedMasterSecret{Supported: true})
	}
	if len(cfg.localSRTPProtectionProfiles) > 0 {
		extensions = append(extensions, &extension.UseSRTP{
			ProtectionProfiles: cfg.localSRTPProtectionProfiles,
			MKI:                cfg.localSRTPMasterKeyIdentifier,
		})
	}
	if cfg.connectionIDGenerator != nil {
		extensions = append(extensions, &extension.ConnectionID{CID: cfg.connectionIDGenerator()})
	}

	if includeCertificateExtensions {
		extensions = append(extensions,
			&extension.SupportedEllipticCurves{EllipticCurves: cfg.ellipticCurves},
			&extension.SupportedPointFormats{PointFormats: []extension.PointFormat{extension.PointFormatUncompressed}},
			&extension.SupportedSignatureAlgorithms{SignatureHashAlgorithms: clientHelloSignatureHashAlgorithms(cfg)},
		)
	}

	return extensions
}

func buildClientHello(state *State, cfg *handshakeConfig, cookie []byte) (*handshake.MessageClientHello, error) {
	cipherSuites := cfg.localCipherSuites
	includeCertExtensions := false
	for _, c := range cipherSuites {
		if c.AuthenticationType() == CipherSuiteAuthenticationTypeCertificate {
			includeCertExtensions = true
		}
	}

	msg := &handshake.MessageClientHello{
		Version:            protocol.Version1_2,
		SessionID:          state.SessionID,
		Cookie:             cookie,
		Random:             state.localRandom,
		CipherSuiteIDs:     cipherSuiteIDs(cipherSuites),
		CompressionMethods: protocol.DefaultCompressionMethods(),
		Extensions:         clientHelloExtensions(cfg, includeCertExtensions),
	}

	if cfg.clientHelloMessageHook != nil {
		if m, ok := cfg.clientHelloMessageHook(*msg).(*handshake.MessageClientHello); ok {
			msg = m
		}
	}

	return msg, nil
}

func flight1generate(_ flightConn, state *State, _ *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	if err := state.localRandom.Populate(); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	// Offer a previous session's ID only if the caller actually
	// remembers one (Config.SessionID, typically copied from an
	// earlier Conn's ConnectionState().SessionID); otherwise send no
	// SessionID; a server configured with a session store will assign
	// a fresh one.
	if state.SessionID == nil && len(cfg.localSessionID) > 0 {
		state.SessionID = cfg.localSessionID
	}

	msg, err := buildClientHello(state, cfg, nil)
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

// flight1parse is the client's HelloVerifyRequest parser, echoing the
// server-supplied cookie back in a second ClientHello (flight3).
func flight1parse(
	_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	_, msgs, ok := cache.fullPullMap(0, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeHelloVerifyRequest, cfg.initialEpoch, false, false},
	)
	if !ok {
		return 0, nil, nil
	}

	hvr, ok := msgs[handshake.TypeHelloVerifyRequest].(*handshake.MessageHelloVerifyRequest)
	if !ok {
		return 0, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, errInvalidFlight
	}

	state.cookie = append([]byte{}, hvr.Cookie...)

	return flight3, nil, nil
}
