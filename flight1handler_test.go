// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"testing"

	"github.com/pion/logging"
)

func TestFlight1GenerateOmitsSessionIDByDefault(t *testing.T) {
	state := &State{}
	cfg := &handshakeConfig{log: logging.NewDefaultLoggerFactory().NewLogger("dtls")}

	if _, alert, err := flight1generate(nil, state, nil, cfg); err != nil || alert != nil {
		t.Fatalf("flight1generate: alert=%v err=%v", alert, err)
	}

	if state.SessionID != nil {
		t.Fatalf("expected no SessionID to be offered without Config.SessionID, got %x", state.SessionID)
	}
}

func TestFlight1GenerateOffersConfiguredSessionID(t *testing.T) {
	state := &State{}
	want := []byte{1, 2, 3, 4}
	cfg := &handshakeConfig{
		log:            logging.NewDefaultLoggerFactory().NewLogger("dtls"),
		localSessionID: want,
	}

	if _, alert, err := flight1generate(nil, state, nil, cfg); err != nil || alert != nil {
		t.Fatalf("flight1generate: alert=%v err=%v", alert, err)
	}

	if string(state.SessionID) != string(want) {
		t.Fatalf("expected SessionID %x, got %x", want, state.SessionID)
	}
}
