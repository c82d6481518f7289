// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "github.com/coreshift/dtls/v2/pkg/protocol/extension"

// SRTPProtectionProfile is the IANA SRTP protection profile negotiated
// by the use_srtp extension (RFC 5764 Section 4.1.2). Only the
// profiles below are recognized; others fail negotiation rather than
// being silently accepted.
type SRTPProtectionProfile = extension.SRTPProtectionProfile

// Supported SRTP protection profiles. AES-CM profiles are offered for
// interoperability with legacy peers. No kind of profile is preferred:
// the server selects the last profile in its configured list that the
// client also offers.
const (
	SRTP_AES128_CM_HMAC_SHA1_80 = extension.SRTP_AES128_CM_HMAC_SHA1_80 //nolint:revive,stylecheck
	SRTP_AES128_CM_HMAC_SHA1_32 = extension.SRTP_AES128_CM_HMAC_SHA1_32 //nolint:revive,stylecheck
	SRTP_AEAD_AES_128_GCM       = extension.SRTP_AEAD_AES_128_GCM       //nolint:revive,stylecheck
	SRTP_AEAD_AES_256_GCM       = extension.SRTP_AEAD_AES_256_GCM       //nolint:revive,stylecheck
)
