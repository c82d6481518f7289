// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// UseExtendedMasterSecret defines a hello extension that signals the
// association of the extended master secret derivation, which binds
// the master secret to a full transcript hash rather than just the
// client/server randoms.
//
// https://tools.ietf.org/html/rfc7627
type UseExtendedMasterSecret struct {
	Supported bool
}

func (u UseExtendedMasterSecret) TypeValue() TypeValue {
	return UseExtendedMasterSecretTypeValue
}

func (u *UseExtendedMasterSecret) Marshal() ([]byte, error) {
	return []byte{}, nil
}

func (u *UseExtendedMasterSecret) Unmarshal(data []byte) error {
	u.Supported = true
	return nil
}
