// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"testing"

	"github.com/pion/logging"
)

func flight4TestConfig(store SessionStore) *handshakeConfig {
	return &handshakeConfig{
		log:               logging.NewDefaultLoggerFactory().NewLogger("dtls"),
		localCipherSuites: []CipherSuite{cipherSuiteForID(TLS_PSK_WITH_AES_128_GCM_SHA256, nil)},
		sessionStore:      store,
	}
}

func flight4TestState() *State {
	return &State{cipherSuite: cipherSuiteForID(TLS_PSK_WITH_AES_128_GCM_SHA256, nil)}
}

// A client offering an unrecognized SessionID (or the all-zero ID a
// stale client implementation might send) must never have it echoed
// back as the basis for a new session: the server always mints its own.
func TestFlight4GenerateAssignsFreshSessionIDOnNoMatch(t *testing.T) {
	store := NewMemorySessionStore()
	state := flight4TestState()
	state.SessionID = bytes.Repeat([]byte{0}, sessionLength)

	if _, alert, err := flight4generate(nil, state, newHandshakeCache(), flight4TestConfig(store)); err != nil || alert != nil {
		t.Fatalf("flight4generate: alert=%v err=%v", alert, err)
	}

	if len(state.SessionID) != sessionLength {
		t.Fatalf("expected a %d-byte SessionID, got %d", sessionLength, len(state.SessionID))
	}
	if bytes.Equal(state.SessionID, bytes.Repeat([]byte{0}, sessionLength)) {
		t.Fatalf("expected the all-zero client-offered SessionID to be replaced, not echoed back")
	}
}

func TestFlight4GenerateTwoFreshClientsGetDifferentSessionIDs(t *testing.T) {
	store := NewMemorySessionStore()

	stateA := flight4TestState()
	stateA.SessionID = bytes.Repeat([]byte{0}, sessionLength)
	if _, alert, err := flight4generate(nil, stateA, newHandshakeCache(), flight4TestConfig(store)); err != nil || alert != nil {
		t.Fatalf("flight4generate A: alert=%v err=%v", alert, err)
	}

	stateB := flight4TestState()
	stateB.SessionID = bytes.Repeat([]byte{0}, sessionLength)
	if _, alert, err := flight4generate(nil, stateB, newHandshakeCache(), flight4TestConfig(store)); err != nil || alert != nil {
		t.Fatalf("flight4generate B: alert=%v err=%v", alert, err)
	}

	if bytes.Equal(stateA.SessionID, stateB.SessionID) {
		t.Fatalf("expected two unrelated fresh clients to receive distinct SessionIDs, both got %x", stateA.SessionID)
	}
}

func TestFlight4GenerateNoSessionStoreLeavesSessionIDUnset(t *testing.T) {
	state := flight4TestState()

	if _, alert, err := flight4generate(nil, state, newHandshakeCache(), flight4TestConfig(nil)); err != nil || alert != nil {
		t.Fatalf("flight4generate: alert=%v err=%v", alert, err)
	}

	if state.SessionID != nil {
		t.Fatalf("expected no SessionID without a configured session store, got %x", state.SessionID)
	}
}
