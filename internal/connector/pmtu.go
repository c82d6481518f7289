// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connector

import (
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// lowDelayDSCP is the Expedited Forwarding DSCP value (RFC 3246),
// shifted into the low-delay/low-jitter class appropriate for
// handshake retransmission timing: a dropped or delayed flight costs
// a full exponential-backoff round trip (§4.1), so marking the
// connector's outbound traffic for preferential queuing where the
// network honors DSCP reduces the odds of hitting that backoff at
// all.
const lowDelayDSCP = 0x2e // EF PHB, RFC 3246

// markLowDelay sets the outbound DSCP/traffic-class marking on conn,
// best-effort, on platforms where golang.org/x/net exposes the
// socket option. Grounded on the same ipv4.NewConn(nc).SetTOS /
// ipv6.NewConn(nc).SetTrafficClass pattern a vendored kcp-go session
// in the examples pack uses to mark its own UDP traffic; failures are
// swallowed since not every net.PacketConn is a *net.UDPConn (the
// connector's own in-process Session type isn't) and not every
// platform honors the option on the ones that are.
func markLowDelay(conn net.PacketConn) {
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		return
	}

	if err := ipv4.NewConn(udpConn).SetTOS(lowDelayDSCP << 2); err == nil {
		return
	}
	_ = ipv6.NewConn(udpConn).SetTrafficClass(lowDelayDSCP)
}
