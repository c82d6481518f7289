// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package elliptic negotiates and performs the ECDHE key agreement
// used by the certificate and PSK-ECDHE cipher suites.
package elliptic

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// Curve is the IANA NamedCurve enum.
//
// https://tools.ietf.org/html/rfc8422#section-5.1.1
type Curve uint16

const (
	P256   Curve = 23
	P384   Curve = 24
	X25519 Curve = 29
)

func (c Curve) String() string {
	switch c {
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case X25519:
		return "X25519"
	default:
		return fmt.Sprintf("0x%x", uint16(c))
	}
}

func (c Curve) toECDH() (ecdh.Curve, error) {
	switch c {
	case P256:
		return ecdh.P256(), nil
	case P384:
		return ecdh.P384(), nil
	case X25519:
		return ecdh.X25519(), nil
	default:
		return nil, errInvalidNamedCurve
	}
}

// SharedSecretFromRaw computes the ECDH shared secret for curve given
// a raw private key and the peer's raw public key, without requiring
// a *Keypair. Used to recompute the pre_master_secret from a
// ClientKeyExchange/ServerKeyExchange pair once both sides are known.
func SharedSecretFromRaw(curve Curve, rawPrivateKey, peerPublicKey []byte) ([]byte, error) {
	ec, err := curve.toECDH()
	if err != nil {
		return nil, err
	}

	priv, err := ec.NewPrivateKey(rawPrivateKey)
	if err != nil {
		return nil, err
	}

	peer, err := ec.NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, err
	}

	return priv.ECDH(peer)
}

// Keypair is a generated ECDHE keypair: the marshaled public key
// ready to go on the wire, and the private key used to compute the
// shared secret once the peer's public key arrives.
type Keypair struct {
	Curve      Curve
	PublicKey  []byte
	PrivateKey *ecdh.PrivateKey
}

// GenerateKeypair generates an ephemeral keypair for curve.
func GenerateKeypair(curve Curve) (*Keypair, error) {
	ec, err := curve.toECDH()
	if err != nil {
		return nil, err
	}

	priv, err := ec.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &Keypair{
		Curve:      curve,
		PublicKey:  priv.PublicKey().Bytes(),
		PrivateKey: priv,
	}, nil
}

// SharedSecret computes the ECDH shared secret given the peer's
// marshaled public key.
func (k *Keypair) SharedSecret(peerPublicKey []byte) ([]byte, error) {
	ec, err := k.Curve.toECDH()
	if err != nil {
		return nil, err
	}

	peer, err := ec.NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, err
	}

	return k.PrivateKey.ECDH(peer)
}
