// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/coreshift/dtls/v2/pkg/crypto/prf"
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// flight6generate is the server's final flight: ChangeCipherSpec
// followed by Finished, covering every handshake message seen so far
// including the client's own Finished. Sending it completes the
// handshake (flightVal.isLastSendFlight reports true for flight6), so
// the FSM never waits for a reply to it.
func flight6generate(
	_ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig,
) ([]*packet, *alert.Alert, error) {
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
		handshakeCachePullRule{handshake.TypeFinished, cfg.initialEpoch + 1, true, false},
	)

	verifyData, err := prf.VerifyDataServer(state.masterSecret, transcript, state.cipherSuite.HashFunc())
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	state.localVerifyData = verifyData

	return []*packet{
		{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2},
				Content: &protocol.ChangeCipherSpec{},
			},
		},
		{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Epoch: 1, Version: protocol.Version1_2},
				Content: &handshake.Handshake{Message: &handshake.MessageFinished{VerifyData: verifyData}},
			},
			shouldEncrypt: true,
		},
	}, nil, nil
}

// flight6parse is unreachable through the main handshake loop: send()
// returns handshakeFinished as soon as flight6 is sent, since
// isLastSendFlight is true for it, without ever calling wait(). It is
// still wired into the dispatch table for a complete flightVal ->
// parser mapping rather than leaving flight6 a partial case.
func flight6parse(
	context.Context, flightConn, *State, *handshakeCache, *handshakeConfig,
) (flightVal, *alert.Alert, error) {
	return 0, nil, nil
}
