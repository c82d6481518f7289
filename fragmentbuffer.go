// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"sort"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

type fragmentKey struct {
	epoch           uint16
	messageSequence uint16
}

// byteRange is a half-open [start, end) span already filled in a
// fragmentedMessage's buffer.
type byteRange struct{ start, end uint32 }

type fragmentedMessage struct {
	header handshake.Header
	buf    []byte // length == header.Length once allocated
	have   []byteRange
}

// complete reports whether [0, header.Length) is fully covered.
func (f *fragmentedMessage) complete() bool {
	if f.header.Length == 0 {
		return true
	}
	sort.Slice(f.have, func(i, j int) bool { return f.have[i].start < f.have[j].start })

	var covered uint32
	for _, r := range f.have {
		if r.start > covered {
			return false
		}
		if r.end > covered {
			covered = r.end
		}
	}
	return covered >= f.header.Length
}

// fragmentBuffer reassembles DTLS handshake messages out of
// (possibly out-of-order, possibly overlapping) record-sized
// fragments. Non-handshake records pass through untouched.
type fragmentBuffer struct {
	pending map[fragmentKey]*fragmentedMessage
	ready   [][]byte // serialized Header+body, in the order they completed
	readyEp []uint16

	// maxDeferredBytes caps the total size of buf allocations held by
	// pending (not yet complete) messages; 0 means unbounded. This
	// guards against a peer claiming a huge handshake.Header.Length and
	// trickling in one byte at a time to force an unbounded allocation.
	maxDeferredBytes int
	deferredBytes    int
}

func newFragmentBuffer() *fragmentBuffer {
	return newFragmentBufferWithBudget(0)
}

// newFragmentBufferWithBudget is newFragmentBuffer with an enforced
// cap on bytes held across all incomplete messages.
func newFragmentBufferWithBudget(maxDeferredBytes int) *fragmentBuffer {
	return &fragmentBuffer{
		pending:          map[fragmentKey]*fragmentedMessage{},
		maxDeferredBytes: maxDeferredBytes,
	}
}

// push parses buf as a complete DTLS record. If it is a Handshake
// record, its fragment is merged into the matching in-flight message
// and isHandshake is true regardless of whether the message is yet
// complete; pop drains whatever has fully reassembled. Any other
// content type is left for the caller to parse and isHandshake is
// false.
func (f *fragmentBuffer) push(buf []byte) (isHandshake bool, err error) {
	recordHeader := &recordlayer.Header{}
	if err := recordHeader.Unmarshal(buf); err != nil {
		return false, err
	}
	if recordHeader.ContentType != protocol.ContentTypeHandshake {
		return false, nil
	}

	body := buf[recordHeader.Size():]
	var exhausted bool
	for len(body) >= handshake.HeaderLength {
		var hdr handshake.Header
		if err := hdr.Unmarshal(body); err != nil {
			return true, err
		}
		if uint32(len(body)) < uint32(handshake.HeaderLength)+hdr.FragmentLength {
			return true, errBufferTooSmall
		}
		fragment := body[handshake.HeaderLength : uint32(handshake.HeaderLength)+hdr.FragmentLength]
		body = body[uint32(handshake.HeaderLength)+hdr.FragmentLength:]

		key := fragmentKey{epoch: recordHeader.Epoch, messageSequence: hdr.MessageSequence}
		msg, ok := f.pending[key]
		if !ok {
			if f.maxDeferredBytes > 0 && f.deferredBytes+int(hdr.Length) > f.maxDeferredBytes {
				// Dropping the newest fragment, not evicting an older
				// one already in flight: a retransmission will retry it
				// once earlier messages complete and free budget.
				exhausted = true
				continue
			}
			msg = &fragmentedMessage{header: hdr, buf: make([]byte, hdr.Length)}
			f.pending[key] = msg
			f.deferredBytes += int(hdr.Length)
		}
		if hdr.FragmentOffset+hdr.FragmentLength <= uint32(len(msg.buf)) {
			copy(msg.buf[hdr.FragmentOffset:], fragment)
			msg.have = append(msg.have, byteRange{hdr.FragmentOffset, hdr.FragmentOffset + hdr.FragmentLength})
		}

		if msg.complete() {
			delete(f.pending, key)
			f.deferredBytes -= int(msg.header.Length)
			full := handshake.Header{
				Type:            msg.header.Type,
				Length:          msg.header.Length,
				MessageSequence: msg.header.MessageSequence,
				FragmentOffset:  0,
				FragmentLength:  msg.header.Length,
			}
			rawHeader, err := full.Marshal()
			if err != nil {
				return true, err
			}
			f.ready = append(f.ready, append(rawHeader, msg.buf...))
			f.readyEp = append(f.readyEp, key.epoch)
		}
	}

	if exhausted {
		return true, errResourceExhausted
	}
	return true, nil
}

// pop removes and returns the oldest fully-reassembled message, or
// (nil, 0) if none is ready.
func (f *fragmentBuffer) pop() (out []byte, epoch uint16) {
	if len(f.ready) == 0 {
		return nil, 0
	}
	out, epoch = f.ready[0], f.readyEp[0]
	f.ready = f.ready[1:]
	f.readyEp = f.readyEp[1:]
	return out, epoch
}
