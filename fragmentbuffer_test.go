// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"testing"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

func fragmentRecord(t *testing.T, epoch uint16, msgType handshake.Type, msgSeq uint16, full []byte, offset, length uint32) []byte {
	t.Helper()

	hdr := handshake.Header{
		Type:            msgType,
		Length:          uint32(len(full)),
		MessageSequence: msgSeq,
		FragmentOffset:  offset,
		FragmentLength:  length,
	}
	rawHdr, err := hdr.Marshal()
	if err != nil {
		t.Fatalf("marshal handshake header: %v", err)
	}

	body := append(rawHdr, full[offset:offset+length]...)

	recHdr := recordlayer.Header{
		ContentType: protocol.ContentTypeHandshake,
		Version:     protocol.Version1_2,
		Epoch:       epoch,
		ContentLen:  uint16(len(body)),
	}
	rawRecHdr, err := recHdr.Marshal()
	if err != nil {
		t.Fatalf("marshal record header: %v", err)
	}

	return append(rawRecHdr, body...)
}

func TestFragmentBufferSingleFragmentMessage(t *testing.T) {
	fb := newFragmentBuffer()
	full := []byte("hello handshake")

	rec := fragmentRecord(t, 0, handshake.TypeClientHello, 0, full, 0, uint32(len(full)))
	isHandshake, err := fb.push(rec)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if !isHandshake {
		t.Fatalf("expected a handshake record")
	}

	out, epoch := fb.pop()
	if out == nil {
		t.Fatalf("expected a reassembled message")
	}
	if epoch != 0 {
		t.Fatalf("expected epoch 0, got %d", epoch)
	}
	if !bytes.Equal(out[handshake.HeaderLength:], full) {
		t.Fatalf("unexpected reassembled body: %q", out[handshake.HeaderLength:])
	}

	if out, _ := fb.pop(); out != nil {
		t.Fatalf("expected no further messages ready")
	}
}

func TestFragmentBufferOutOfOrderFragments(t *testing.T) {
	fb := newFragmentBuffer()
	full := []byte("0123456789abcdef")

	second := fragmentRecord(t, 0, handshake.TypeClientHello, 0, full, 8, 8)
	first := fragmentRecord(t, 0, handshake.TypeClientHello, 0, full, 0, 8)

	if _, err := fb.push(second); err != nil {
		t.Fatalf("push second: %v", err)
	}
	if out, _ := fb.pop(); out != nil {
		t.Fatalf("expected the message to still be incomplete")
	}

	if _, err := fb.push(first); err != nil {
		t.Fatalf("push first: %v", err)
	}
	out, _ := fb.pop()
	if out == nil {
		t.Fatalf("expected the message to complete once both fragments arrived")
	}
	if !bytes.Equal(out[handshake.HeaderLength:], full) {
		t.Fatalf("unexpected reassembled body: %q", out[handshake.HeaderLength:])
	}
}

func TestFragmentBufferOverlappingFragments(t *testing.T) {
	fb := newFragmentBuffer()
	full := []byte("0123456789abcdef")

	// A retransmission can resend a fragment that overlaps one already
	// received; the overlap must not break completion detection.
	wide := fragmentRecord(t, 0, handshake.TypeClientHello, 0, full, 0, 12)
	tail := fragmentRecord(t, 0, handshake.TypeClientHello, 0, full, 8, 8)

	if _, err := fb.push(wide); err != nil {
		t.Fatalf("push wide: %v", err)
	}
	if _, err := fb.push(tail); err != nil {
		t.Fatalf("push tail: %v", err)
	}

	out, _ := fb.pop()
	if out == nil {
		t.Fatalf("expected the overlapping fragments to complete the message")
	}
	if !bytes.Equal(out[handshake.HeaderLength:], full) {
		t.Fatalf("unexpected reassembled body: %q", out[handshake.HeaderLength:])
	}
}

func TestFragmentBufferDistinctEpochsDoNotMerge(t *testing.T) {
	fb := newFragmentBuffer()
	fullA := []byte("epoch-zero-message")
	fullB := []byte("epoch-one-message!")

	if _, err := fb.push(fragmentRecord(t, 0, handshake.TypeClientHello, 0, fullA, 0, uint32(len(fullA)))); err != nil {
		t.Fatalf("push epoch 0: %v", err)
	}
	if _, err := fb.push(fragmentRecord(t, 1, handshake.TypeClientHello, 0, fullB, 0, uint32(len(fullB)))); err != nil {
		t.Fatalf("push epoch 1: %v", err)
	}

	first, ep1 := fb.pop()
	second, ep2 := fb.pop()
	if first == nil || second == nil {
		t.Fatalf("expected both epoch-distinct messages to complete independently")
	}
	if ep1 != 0 || ep2 != 1 {
		t.Fatalf("expected epochs (0,1), got (%d,%d)", ep1, ep2)
	}
}

func TestFragmentBufferNonHandshakeContentPassesThrough(t *testing.T) {
	fb := newFragmentBuffer()

	recHdr := recordlayer.Header{
		ContentType: protocol.ContentTypeAlert,
		Version:     protocol.Version1_2,
		ContentLen:  2,
	}
	rawRecHdr, err := recHdr.Marshal()
	if err != nil {
		t.Fatalf("marshal record header: %v", err)
	}
	rec := append(rawRecHdr, 0x02, 0x0a)

	isHandshake, err := fb.push(rec)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if isHandshake {
		t.Fatalf("expected a non-handshake record to be reported as such")
	}
	if out, _ := fb.pop(); out != nil {
		t.Fatalf("expected no reassembled message for a non-handshake record")
	}
}
