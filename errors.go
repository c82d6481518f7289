// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"

	"github.com/coreshift/dtls/v2/pkg/protocol/alert"
)

var (
	errNilNextConn                      = &FatalError{Err: errors.New("next conn is nil")}
	errNoConfigProvided                 = &FatalError{Err: errors.New("no config provided")}
	errPSKAndIdentityMustBeSetForClient = &FatalError{Err: errors.New("PSK and PSK Identity Hint must both be set for client")}
	errInvalidCipherSuite               = &FatalError{Err: errors.New("invalid or unknown cipher suite")}
	errNoAvailableCipherSuites          = &FatalError{Err: errors.New("connection can not be created, no CipherSuites satisfy this Config")}
	errNoAvailablePSKCipherSuite        = &FatalError{Err: errors.New("none of the listed CipherSuites are PSK CipherSuites")}
	errNoAvailableCertificateCipherSuite = &FatalError{Err: errors.New("none of the listed CipherSuites are certificate CipherSuites")}
	errPSKAndCertificate                = &FatalError{Err: errors.New("PSK and certificates must not be used together")}
	errPSKAndIdentityMustBeSetForServer = &FatalError{Err: errors.New("PSKIdentityHint and PSK callback must both be set for server")}
	errNoCertificates                   = &FatalError{Err: errors.New("no certificates configured")}
	errServerMustHaveCertificate        = &FatalError{Err: errors.New("Certificates must be set for server")}
	errInvalidFlight                    = &InternalError{Err: errors.New("invalid flight number")}
	errKeySignatureGenerateFailed       = &InternalError{Err: errors.New("unable to generate key signature")}
	errKeySignatureVerifyFailed         = &FatalError{Err: errors.New("unable to verify key signature")}
	errCookieMismatch                   = &FatalError{Err: errors.New("client sent a cookie that does not match the one it was told to echo")}
	errServerHelloInvalidCipherSuite    = &FatalError{Err: errors.New("server hello can not negotiate an unsupported cipher suite")}
	errNotAcceptableCertificateChain    = &FatalError{Err: errors.New("server certificate chain was not accepted by ClientCertificateVerify callback")}
	errCertificateVerifyNoSignature     = &InternalError{Err: errors.New("client sent certificate verify but we have no signature to check")}
	errVerifyDataMismatch               = &FatalError{Err: errors.New("expected and actual verify data does not match")}
	errClientCertificateNotVerified     = &FatalError{Err: errors.New("client sent certificate but did not verify it")}
	errClientCertificateRequired        = &FatalError{Err: errors.New("server required client verification, but got none")}
	errNoAvailableSignatureSchemes      = &FatalError{Err: errors.New("none of the signature schemes are compatible with the certificate")}
	errHandshakeInProgress              = &TemporaryError{Err: errors.New("handshake is in progress")}
	errDeadlineExceeded                 = &TimeoutError{Err: errors.New("read/write timeout")}
	errBufferTooSmall                   = &TemporaryError{Err: errors.New("buffer is too small")}
	errSequenceNumberOverflow            = &FatalError{Err: errors.New("sequence number overflow")}
	errApplicationDataEpochZero         = &FatalError{Err: errors.New("ApplicationData with epoch 0 is invalid")}
	errUnhandledContextType             = &FatalError{Err: errors.New("unhandled contentType")}
	errFailedToAccessPoolReadBuffer     = &FatalError{Err: errors.New("failed to access pool read buffer")}
	errHandshakeMessageUnhandled        = &InternalError{Err: errors.New("unhandled handshake message")}
	errInvalidClientKeyExchange         = &FatalError{Err: errors.New("invalid client key exchange")}
	errMissingKeyExchangeParams         = &InternalError{Err: errors.New("missing key exchange params")}
	errNotExpectedFinished              = &InternalError{Err: errors.New("not expecting finished")}
	errNoSessionFound                   = &TemporaryError{Err: errors.New("no session found for resumption")}
	errClientNoCertificate              = &FatalError{Err: errors.New("no client certificate sent")}
	errInvalidConnectionID              = &FatalError{Err: errors.New("connection ID does not match")}
	errUnsupportedExtendedMasterSecret  = &FatalError{Err: errors.New("peer requires extended master secret which is not supported")}
	errContextUnsupported              = &FatalError{Err: errors.New("context is not supported for export")}
	errReservedExportKeyingMaterial     = &FatalError{Err: errors.New("export keying material label is reserved")}
	errLengthMismatch                  = &FatalError{Err: errors.New("data length and expected length do not match")}
	errResourceExhausted               = &TemporaryError{Err: errors.New("deferred fragment bytes exceed MaxDeferredFragmentBytes")}
)

// invalidKeyingLabels lists the exporter labels RFC 5705 Section 4
// reserves for the TLS/DTLS handshake itself; exporting under one of
// these would let a caller collide with internal key derivation.
var invalidKeyingLabels = map[string]bool{ //nolint:gochecknoglobals
	"client finished": true,
	"server finished": true,
	"master secret":   true,
	"key expansion":   true,
}

// ErrConnClosed is returned by Read and Write after Close has been called.
var ErrConnClosed = &connClosedError{msg: "conn is closed"}

// FatalError indicates that the DTLS connection is no longer available.
// It is mainly caused by wrong configuration of server or client.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "dtls fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// InternalError indicates an internal implementation error, usually a
// bug or an attempt to use an unimplemented feature.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "dtls internal: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// TemporaryError indicates the connection is still usable but this
// particular request failed.
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string  { return "dtls temporary: " + e.Err.Error() }
func (e *TemporaryError) Unwrap() error  { return e.Err }
func (e *TemporaryError) Temporary() bool { return true }

// TimeoutError indicates that a request timed out.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return "dtls timeout: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }
func (e *TimeoutError) Timeout() bool { return true }

// HandshakeError indicates that the handshake failed.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return "dtls handshake: " + e.Err.Error() }
func (e *HandshakeError) Unwrap() error { return e.Err }

type connClosedError struct {
	msg string
}

func (e *connClosedError) Error() string   { return e.msg }
func (e *connClosedError) Timeout() bool   { return false }
func (e *connClosedError) Temporary() bool { return false }

// netError passes underlying transport errors (net.PacketConn
// Read/Write failures) through unchanged; kept as a named hook so a
// future wrapper (e.g. classifying ECONNREFUSED as temporary) has a
// single place to live.
func netError(err error) error {
	return err
}

// alertError wraps an Alert received from the peer so the handshake
// and read loops can distinguish a fatal/close_notify alert (which
// tears the connection down) from a warning that the caller simply
// observes.
type alertError struct {
	*alert.Alert
}

func (e *alertError) Error() string {
	return "alert: " + e.Alert.String()
}

// IsFatalOrCloseNotify reports whether this alert must tear the
// connection down: any Fatal-level alert, or a Warning-level
// close_notify.
func (e *alertError) IsFatalOrCloseNotify() bool {
	return e.Level == alert.Fatal || e.Description == alert.CloseNotify
}
