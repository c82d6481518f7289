// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"fmt"
	"hash"
	"sort"
	"sync"

	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
)

type handshakeCacheItem struct {
	typ             handshake.Type
	isClient        bool
	epoch           uint16
	messageSequence uint16
	data            []byte
}

// handshakeCache stores every raw handshake message body seen on this
// connection, keyed by (type, isClient, epoch, messageSequence). It
// backs both the running transcript hash (sessionHash) and retrieval
// of specific messages once a flight is complete (fullPullMap).
type handshakeCache struct {
	mu    sync.Mutex
	cache []*handshakeCacheItem
}

func newHandshakeCache() *handshakeCache {
	return &handshakeCache{}
}

func (h *handshakeCache) push(data []byte, epoch uint16, messageSequence uint16, typ handshake.Type, isClient bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, i := range h.cache {
		if i.typ == typ && i.isClient == isClient && i.messageSequence == messageSequence && i.epoch == epoch {
			return false
		}
	}

	cp := append([]byte{}, data...)
	h.cache = append(h.cache, &handshakeCacheItem{
		typ:             typ,
		isClient:        isClient,
		epoch:           epoch,
		messageSequence: messageSequence,
		data:            cp,
	})

	return true
}

// handshakeCachePullRule describes one message fullPullMap should
// retrieve: its type, the epoch it was sent in, which side sent it,
// and whether its absence should fail the pull.
type handshakeCachePullRule struct {
	typ      handshake.Type
	epoch    uint16
	isClient bool
	optional bool
}

// fullPullMap fetches each rule's message out of the cache, unmarshals
// it, and returns the lowest message sequence number seen among all
// matched messages, optional ones included (so a caller can detect
// resumed numbering). ok is false if any non-optional rule found nothing.
func (h *handshakeCache) fullPullMap(
	startSeq int, cipherSuite CipherSuite, rules ...handshakeCachePullRule,
) (int, map[handshake.Type]handshake.Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ciphersFlight := map[handshake.Type]func() handshake.Message{
		handshake.TypeClientHello:        func() handshake.Message { return &handshake.MessageClientHello{} },
		handshake.TypeServerHello:        func() handshake.Message { return &handshake.MessageServerHello{} },
		handshake.TypeHelloVerifyRequest: func() handshake.Message { return &handshake.MessageHelloVerifyRequest{} },
		handshake.TypeCertificate:        func() handshake.Message { return &handshake.MessageCertificate{} },
		handshake.TypeServerKeyExchange: func() handshake.Message {
			return &handshake.MessageServerKeyExchange{}
		},
		handshake.TypeCertificateRequest: func() handshake.Message { return &handshake.MessageCertificateRequest{} },
		handshake.TypeServerHelloDone:    func() handshake.Message { return &handshake.MessageServerHelloDone{} },
		handshake.TypeClientKeyExchange: func() handshake.Message {
			return &handshake.MessageClientKeyExchange{}
		},
		handshake.TypeCertificateVerify: func() handshake.Message { return &handshake.MessageCertificateVerify{} },
		handshake.TypeFinished:          func() handshake.Message { return &handshake.MessageFinished{} },
	}

	out := map[handshake.Type]handshake.Message{}
	seqPool := []int{}

	for _, r := range rules {
		item := h.findItem(r.typ, r.isClient, r.epoch)
		if item == nil {
			if r.optional {
				continue
			}
			return startSeq, nil, false
		}
		seqPool = append(seqPool, int(item.messageSequence))

		newMsg, ok := ciphersFlight[r.typ]
		if !ok {
			return startSeq, nil, false
		}
		msg := newMsg()
		switch m := msg.(type) {
		case *handshake.MessageServerKeyExchange:
			if cipherSuite != nil && cipherSuite.KeyExchangeAlgorithm() == CipherSuiteKeyExchangeAlgorithmPsk {
				if err := m.UnmarshalWithParams(item.data, true, false, false); err != nil {
					return startSeq, nil, false
				}
			} else if err := m.UnmarshalWithParams(item.data, false, true, true); err != nil {
				return startSeq, nil, false
			}
		default:
			if err := msg.Unmarshal(item.data); err != nil {
				return startSeq, nil, false
			}
		}
		out[r.typ] = msg
	}

	if len(seqPool) == 0 {
		return startSeq, out, true
	}
	sort.Ints(seqPool)

	return seqPool[0], out, true
}

// findItem returns the matching message with the highest message
// sequence number, so a retried message (e.g. a cookie-echoing
// ClientHello) supersedes the earlier one.
func (h *handshakeCache) findItem(typ handshake.Type, isClient bool, epoch uint16) *handshakeCacheItem {
	var found *handshakeCacheItem
	for _, i := range h.cache {
		if i.typ == typ && i.isClient == isClient && i.epoch == epoch {
			if found == nil || i.messageSequence > found.messageSequence {
				found = i
			}
		}
	}
	return found
}

// pullAndMerge concatenates the raw bytes of every rule match, in the
// order the rules are given, for use as a transcript hash prefix.
func (h *handshakeCache) pullAndMerge(rules ...handshakeCachePullRule) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := []*handshakeCacheItem{}
	for _, r := range rules {
		if item := h.findItem(r.typ, r.isClient, r.epoch); item != nil {
			items = append(items, item)
		}
	}

	merged := []byte{}
	for _, item := range items {
		merged = append(merged, item.data...)
	}
	return merged
}

// sessionHash feeds the handshake messages of epoch sent or received so
// far, in sequence-number order (client first on a tie), through hf,
// skipping CertificateVerify and Finished so that the hash covers the
// messages up to and including ClientKeyExchange, for use as the
// extended-master-secret "session_hash" (RFC 7627 Section 4).
func (h *handshakeCache) sessionHash(hf func() hash.Hash, epoch uint16) ([]byte, error) {
	h.mu.Lock()
	merged := append([]*handshakeCacheItem{}, h.cache...)
	h.mu.Unlock()

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].messageSequence != merged[j].messageSequence {
			return merged[i].messageSequence < merged[j].messageSequence
		}
		return merged[i].isClient && !merged[j].isClient
	})

	hasher := hf()
	for _, item := range merged {
		if item.epoch != epoch {
			continue
		}
		if item.typ == handshake.TypeFinished || item.typ == handshake.TypeCertificateVerify {
			continue
		}
		if _, err := hasher.Write(item.data); err != nil {
			return nil, fmt.Errorf("session hash: %w", err)
		}
	}

	return hasher.Sum(nil), nil
}
