// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RandomBytesLength is the length of the random opaque field in a
// hello Random.
const RandomBytesLength = 28

// RandomLength is the total marshaled length of a Random: a 4-byte
// timestamp plus RandomBytesLength random bytes.
const RandomLength = RandomBytesLength + 4

// Random carries the gmt_unix_time and random_bytes client and server
// hellos exchange; both are mixed into the master secret derivation.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [RandomBytesLength]byte
}

// Populate fills in the current time and cryptographically random bytes.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Now()
	if _, err := rand.Read(r.RandomBytes[:]); err != nil {
		return err
	}
	return nil
}

// MarshalFixed encodes the Random into its fixed-size wire form.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte
	binary.BigEndian.PutUint32(out[:4], uint32(r.GMTUnixTime.Unix())) //nolint:gosec
	copy(out[4:], r.RandomBytes[:])
	return out
}

// UnmarshalFixed decodes a fixed-size wire form into the Random.
func (r *Random) UnmarshalFixed(data [RandomLength]byte) {
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(data[:4])), 0)
	copy(r.RandomBytes[:], data[4:])
}
