// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"bytes"
	"testing"

	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

func TestGCMEncryptDecryptRoundtrip(t *testing.T) {
	localKey := make([]byte, 16)
	remoteKey := make([]byte, 16)
	localWriteIV := []byte{0x01, 0x02, 0x03, 0x04}
	remoteWriteIV := []byte{0x05, 0x06, 0x07, 0x08}
	for i := range localKey {
		localKey[i] = byte(i)
		remoteKey[i] = byte(i + 1)
	}

	clientSide, err := NewGCM(localKey, localWriteIV, remoteKey, remoteWriteIV)
	if err != nil {
		t.Fatal(err)
	}
	serverSide, err := NewGCM(remoteKey, remoteWriteIV, localKey, localWriteIV)
	if err != nil {
		t.Fatal(err)
	}

	content := &protocol.ApplicationData{Data: []byte("hello dtls")}
	pkt := &recordlayer.RecordLayer{
		Header: recordlayer.Header{
			Version: protocol.Version{Major: 0xfe, Minor: 0xfd},
			Epoch:   1,
		},
		Content: content,
	}
	raw, err := pkt.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	encrypted, err := clientSide.Encrypt(pkt, raw)
	if err != nil {
		t.Fatal(err)
	}

	decrypted, err := serverSide.Decrypt(recordlayer.Header{}, encrypted)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(decrypted[pkt.Header.Size():], content.Data) {
		t.Errorf("decrypted payload does not match: %v != %v", decrypted[pkt.Header.Size():], content.Data)
	}
}

func TestGCMDecryptChangeCipherSpecPassthrough(t *testing.T) {
	localKey := make([]byte, 16)
	remoteKey := make([]byte, 16)
	g, err := NewGCM(localKey, []byte{0, 0, 0, 0}, remoteKey, []byte{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	ccs := &protocol.ChangeCipherSpec{}
	pkt := &recordlayer.RecordLayer{Content: ccs}
	raw, err := pkt.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	out, err := g.Decrypt(recordlayer.Header{}, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("ChangeCipherSpec record should pass through unchanged")
	}
}
