// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// SRTPProtectionProfile defines the parameters in effect for SRTP
// processing negotiated alongside the DTLS handshake.
//
// https://tools.ietf.org/html/rfc5764#section-4.1.2
type SRTPProtectionProfile uint16

const (
	SRTP_AES128_CM_HMAC_SHA1_80 SRTPProtectionProfile = 0x0001
	SRTP_AES128_CM_HMAC_SHA1_32 SRTPProtectionProfile = 0x0002
	SRTP_AEAD_AES_128_GCM       SRTPProtectionProfile = 0x0007
	SRTP_AEAD_AES_256_GCM       SRTPProtectionProfile = 0x0008
)

func srtpProtectionProfiles() map[SRTPProtectionProfile]bool {
	return map[SRTPProtectionProfile]bool{
		SRTP_AES128_CM_HMAC_SHA1_80: true,
		SRTP_AES128_CM_HMAC_SHA1_32: true,
		SRTP_AEAD_AES_128_GCM:       true,
		SRTP_AEAD_AES_256_GCM:       true,
	}
}

// UseSRTP is the use_srtp extension. A client offers it when profiles
// are configured; the server parses it from the ClientHello, selects a
// profile both sides support, and echoes it in the ServerHello.
// Deriving SRTP keys from the negotiated profile is not done here.
type UseSRTP struct {
	ProtectionProfiles []SRTPProtectionProfile
	MKI                []byte
}

func (u UseSRTP) TypeValue() TypeValue {
	return UseSRTPTypeValue
}

func (u *UseSRTP) Marshal() ([]byte, error) {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(u.ProtectionProfiles)*2))
	for _, p := range u.ProtectionProfiles {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(p))
		out = append(out, b...)
	}
	out = append(out, byte(len(u.MKI)))
	out = append(out, u.MKI...)
	return out, nil
}

func (u *UseSRTP) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen {
		return errBufferTooSmall
	}

	u.ProtectionProfiles = []SRTPProtectionProfile{}
	supported := srtpProtectionProfiles()
	for i := 0; i < listLen/2; i++ {
		p := SRTPProtectionProfile(binary.BigEndian.Uint16(data[i*2:]))
		if supported[p] {
			u.ProtectionProfiles = append(u.ProtectionProfiles, p)
		}
	}
	data = data[listLen:]

	if len(data) < 1 {
		return errBufferTooSmall
	}
	mkiLen := int(data[0])
	if len(data) < 1+mkiLen {
		return errBufferTooSmall
	}
	u.MKI = append([]byte{}, data[1:1+mkiLen]...)

	if len(u.ProtectionProfiles) == 0 {
		return errInvalidSRTPProtectionProfile
	}
	return nil
}
