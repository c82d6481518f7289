// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connector

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"net"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// statelessCookieLength is the size of the HMAC-derived cookie the
// connector hands out. It is independent of the (equally sized, random,
// per-State) cookie the protocol layer's own HelloVerifyRequest dance
// uses once a connection exists.
const statelessCookieLength = 20

// statelessCookie lets the connector answer "does this source address
// own the ClientHello it claims to" without storing anything keyed by
// the client: the cookie is an HMAC over the address and the
// ClientHello's own random/session fields, so verifying it back out is
// a pure function of the secret and the datagram in hand. This is what
// lets dispatch gate connEntry/Session/handshake allocation on a valid
// cookie instead of the protocol layer's State-backed check, which only
// runs after that allocation has already happened.
type statelessCookie struct {
	secret [32]byte
}

func newStatelessCookie() (*statelessCookie, error) {
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return nil, err
	}
	return &statelessCookie{secret: secret}, nil
}

func (s *statelessCookie) generate(addr net.Addr, clientHello *handshake.MessageClientHello) []byte {
	mac := hmac.New(sha256.New, s.secret[:])
	mac.Write([]byte(addr.String()))
	random := clientHello.Random.MarshalFixed()
	mac.Write(random[:])
	mac.Write(clientHello.SessionID)
	return mac.Sum(nil)[:statelessCookieLength]
}

// verify reports whether clientHello carries the cookie this connector
// would have handed out for addr.
func (s *statelessCookie) verify(addr net.Addr, clientHello *handshake.MessageClientHello) bool {
	if len(clientHello.Cookie) != statelessCookieLength {
		return false
	}
	return hmac.Equal(s.generate(addr, clientHello), clientHello.Cookie)
}

// helloVerifyRequest marshals the HelloVerifyRequest datagram sent in
// reply to a ClientHello missing (or failing) the stateless cookie
// check, carrying the same record epoch the ClientHello used so it
// reads as a direct reply; its record sequence number is left at 0.
func helloVerifyRequest(cookie []byte, version protocol.Version, epoch uint16) ([]byte, error) {
	msg := &handshake.MessageHelloVerifyRequest{Version: version, Cookie: cookie}
	body, err := msg.Marshal()
	if err != nil {
		return nil, err
	}

	hdr := handshake.Header{
		Type:           handshake.TypeHelloVerifyRequest,
		Length:         uint32(len(body)),
		FragmentLength: uint32(len(body)),
	}
	rawHdr, err := hdr.Marshal()
	if err != nil {
		return nil, err
	}
	payload := append(rawHdr, body...)

	recHdr := recordlayer.Header{
		ContentType: protocol.ContentTypeHandshake,
		Version:     version,
		Epoch:       epoch,
		ContentLen:  uint16(len(payload)),
	}
	rawRecHdr, err := recHdr.Marshal()
	if err != nil {
		return nil, err
	}

	return append(rawRecHdr, payload...), nil
}

// errNotClientHello marks a datagram that dispatch's pre-allocation
// peek could not read as an unfragmented ClientHello (a non-handshake
// record, another handshake type, or a fragmented ClientHello).
// dispatch drops such a datagram before allocating any state.
var errNotClientHello = &notClientHelloError{}

type notClientHelloError struct{}

func (*notClientHelloError) Error() string { return "connector: datagram is not an unfragmented ClientHello" }

// peekClientHello extracts a MessageClientHello from the first
// handshake fragment of a raw inbound datagram, without requiring any
// existing per-connection state. Only the unfragmented case (a whole
// ClientHello arriving in one record, which covers every real client)
// is supported; anything else returns errNotClientHello, and dispatch
// drops it.
func peekClientHello(data []byte) (*handshake.MessageClientHello, *recordlayer.Header, error) {
	var recHdr recordlayer.Header
	if err := recHdr.Unmarshal(data); err != nil {
		return nil, nil, err
	}
	if recHdr.ContentType != protocol.ContentTypeHandshake {
		return nil, nil, errNotClientHello
	}

	body := data[recHdr.Size():]
	var hdr handshake.Header
	if err := hdr.Unmarshal(body); err != nil {
		return nil, nil, err
	}
	if hdr.Type != handshake.TypeClientHello || hdr.FragmentOffset != 0 || hdr.FragmentLength != hdr.Length {
		return nil, nil, errNotClientHello
	}
	if uint32(len(body)) < uint32(handshake.HeaderLength)+hdr.FragmentLength {
		return nil, nil, errNotClientHello
	}

	clientHello := &handshake.MessageClientHello{}
	if err := clientHello.Unmarshal(body[handshake.HeaderLength : uint32(handshake.HeaderLength)+hdr.FragmentLength]); err != nil {
		return nil, nil, err
	}
	return clientHello, &recHdr, nil
}
