// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
)

// flightVal is both sides' shared notion of "where in the handshake
// are we": RFC 6347 Section 4.2.4 numbers flights 1-6; flight0 is the
// server's implicit wait for the first ClientHello. Session
// resumption reuses flights 4-6 unchanged (see flight4handler.go):
// the server and client each trim their own messages out of the set
// they send based on whether State.masterSecret was already known
// from a stored Session, rather than following a distinct flight
// graph.
type flightVal uint8

const (
	flight0 flightVal = iota + 1
	flight1
	flight2
	flight3
	flight4
	flight5
	flight6
)

func (f flightVal) String() string {
	switch f {
	case flight0:
		return "Flight 0"
	case flight1:
		return "Flight 1"
	case flight2:
		return "Flight 2"
	case flight3:
		return "Flight 3"
	case flight4:
		return "Flight 4"
	case flight5:
		return "Flight 5"
	case flight6:
		return "Flight 6"
	default:
		return "Unknown Flight"
	}
}

// isLastSendFlight reports whether, having just sent this flight, the
// handshake is over from the sender's point of view (no further wait
// is needed before application data can flow).
func (f flightVal) isLastSendFlight() bool {
	return f == flight6
}

// isLastRecvFlight reports whether receiving this flight completes the
// handshake from the receiver's point of view: the client's
// flight5parse returns flight5 once the server's Finished verifies, and
// the FSM then finishes instead of preparing another flight.
func (f flightVal) isLastRecvFlight() bool {
	return f == flight5
}

type flightGenerator func(flightConn, *State, *handshakeCache, *handshakeConfig) ([]*packet, *alert.Alert, error)
type flightParser func(context.Context, flightConn, *State, *handshakeCache, *handshakeConfig) (flightVal, *alert.Alert, error)

func (f flightVal) getFlightGenerator() (flightGenerator, bool, error) {
	switch f {
	case flight0:
		return flight0generate, false, nil
	case flight1:
		return flight1generate, true, nil
	case flight2:
		return flight2generate, false, nil
	case flight3:
		return flight3generate, true, nil
	case flight4:
		return flight4generate, true, nil
	case flight5:
		return flight5generate, true, nil
	case flight6:
		return flight6generate, true, nil
	default:
		return nil, false, errInvalidFlight
	}
}

func (f flightVal) getFlightParser() (flightParser, error) {
	switch f {
	case flight0, flight2:
		return flight0parse, nil
	case flight1:
		return flight1parse, nil
	case flight3:
		return flight3parse, nil
	case flight4:
		return flight4parse, nil
	case flight5:
		return flight5parse, nil
	case flight6:
		return flight6parse, nil
	default:
		return nil, errInvalidFlight
	}
}
