// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"time"

	"github.com/coreshift/dtls/v2/internal/metrics"
	"github.com/coreshift/dtls/v2/pkg/crypto/elliptic"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/pion/logging"
)

const keyLogLabelTLS12 = "CLIENT_RANDOM"

// Config configures a DTLS client or server. Once passed to Client,
// Server or Dial it must not be modified.
type Config struct {
	// Certificates contains the certificate chain to present to the
	// peer. A server must set this unless PSK is set; a client should
	// set this so CertificateRequests can be answered.
	Certificates []tls.Certificate

	// CipherSuites is a list of supported cipher suites. If nil, a
	// default list is used.
	CipherSuites []CipherSuiteID

	// CustomCipherSuites lets callers register cipher suites reserved
	// for private use that are not compiled into this module.
	CustomCipherSuites func() []CipherSuite

	// SignatureSchemes is the raw (HashAlgorithm<<8 | SignatureAlgorithm)
	// scheme list the local side is willing to verify, in preference
	// order. Nil selects the built-in default list.
	SignatureSchemes []uint16

	// SRTPProtectionProfiles lists the SRTP protection profiles a
	// client offers and a server is willing to accept via use_srtp.
	// SRTP keying material export itself is outside this module's
	// scope; only the negotiation surface is implemented.
	SRTPProtectionProfiles []SRTPProtectionProfile

	// SRTPMasterKeyIdentifier is sent via the use_srtp extension.
	SRTPMasterKeyIdentifier []byte

	// ClientAuth is the server's policy for client authentication.
	ClientAuth ClientAuthType

	// ExtendedMasterSecret controls whether the extended master secret
	// extension (RFC 7627) is requested, required, or disabled.
	ExtendedMasterSecret ExtendedMasterSecretType

	// FlightInterval controls how often unacknowledged flights are
	// retransmitted. Defaults to one second.
	FlightInterval time.Duration

	// DisableRetransmitBackoff disables the exponential backoff of
	// FlightInterval specified in RFC 4347 Section 4.2.4.1.
	DisableRetransmitBackoff bool

	// PSK sets the pre-shared key callback. If non-nil, the PSK cipher
	// suites are enabled; certificate suites stay available when
	// Certificates or GetCertificate is also set.
	PSK             PSKCallback
	PSKIdentityHint []byte

	// InsecureSkipVerify disables server certificate and host name
	// verification. Testing only.
	InsecureSkipVerify bool

	// InsecureHashes allows signature schemes using hash algorithms
	// known to be weak (MD5, SHA-1).
	InsecureHashes bool

	// VerifyPeerCertificate, if set, runs after normal verification and
	// can reject a chain that would otherwise be accepted.
	VerifyPeerCertificate func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error

	// VerifyConnection, if set, runs after certificate/PSK verification
	// on every connection regardless of InsecureSkipVerify/ClientAuth.
	VerifyConnection func(*State) error

	// RootCAs verifies the peer's certificate chain when acting as a
	// client. Defaults to the host root set.
	RootCAs *x509.CertPool

	// ClientCAs verifies client certificates when ClientAuth requires
	// it.
	ClientCAs *x509.CertPool

	// ServerName is sent via SNI and checked against the peer's
	// certificate unless InsecureSkipVerify is set.
	ServerName string

	LoggerFactory logging.LoggerFactory

	// ConnectContextMaker builds the context used by Dial/Client/Server
	// when no explicit context is supplied. Defaults to a 30s timeout.
	ConnectContextMaker func() (context.Context, func())

	// MTU is the size at which handshake messages are fragmented.
	// Defaults to 1200.
	MTU int

	// ReplayProtectionWindow is the width of the anti-replay sliding
	// window, in sequence numbers. Defaults to 64.
	ReplayProtectionWindow int

	// KeyLogWriter, if set, receives NSS key log lines for external
	// decryption tools. Using it compromises confidentiality.
	KeyLogWriter io.Writer

	// SessionStore stores (ID, master secret) pairs for abbreviated
	// handshake resumption.
	SessionStore SessionStore

	// SupportedProtocols lists the ALPN protocols offered/accepted.
	SupportedProtocols []string

	// EllipticCurves lists the curves offered for ECDHE. Defaults to
	// X25519, then P-384.
	EllipticCurves []elliptic.Curve

	// GetCertificate selects a server certificate based on the
	// ClientHelloInfo. Used when Certificates is empty or SNI must
	// choose between multiple certificates.
	GetCertificate func(*ClientHelloInfo) (*tls.Certificate, error)

	// GetClientCertificate, if set, supplies the certificate presented
	// in response to a server's CertificateRequest, overriding
	// Certificates.
	GetClientCertificate func(*CertificateRequestInfo) (*tls.Certificate, error)

	// InsecureSkipVerifyHello lets a server skip the HelloVerifyRequest
	// cookie exchange and complete the handshake after the initial
	// ClientHello. Weakens resistance to source-address spoofing.
	InsecureSkipVerifyHello bool

	// ConnectionIDGenerator generates the Connection ID this side asks
	// its peer to use, per RFC 9146. All generated CIDs must share a
	// length; a nil generator disables the extension.
	ConnectionIDGenerator func() []byte

	// PaddingLengthGenerator generates the number of zero padding
	// bytes added to each Connection ID inner plaintext record.
	PaddingLengthGenerator func(uint) uint

	// HelloRandomBytesGenerator overrides how the client hello Random
	// is populated. Defaults to crypto/rand.
	HelloRandomBytesGenerator func() [handshake.RandomBytesLength]byte

	// ClientHelloMessageHook, ServerHelloMessageHook and
	// CertificateRequestMessageHook let a caller rewrite an outgoing
	// handshake message before it is sent, e.g. for fingerprinting
	// resistance or protocol conformance testing.
	ClientHelloMessageHook        func(handshake.MessageClientHello) handshake.Message
	ServerHelloMessageHook        func(handshake.MessageServerHello) handshake.Message
	CertificateRequestMessageHook func(handshake.MessageCertificateRequest) handshake.Message

	// OnConnectionAttempt is called once per accepted address, before
	// the handshake itself runs, so a server can log, rate-limit or
	// block by address. It only runs for addresses that already passed
	// the connector's stateless cookie check: an address that never
	// echoes a valid cookie is answered with a HelloVerifyRequest and
	// never reaches this callback, or any per-connection allocation, at
	// all.
	OnConnectionAttempt func(net.Addr) error

	// MaxConnections bounds how many connections Listen will multiplex
	// onto one socket at once; 0 means unbounded. Ignored by Dial,
	// Client and Server, which are always single-connection.
	MaxConnections int

	// ConnectionIdleTimeout evicts a multiplexed connection that Listen
	// has not received a datagram for in this long; 0 disables idle
	// eviction.
	ConnectionIdleTimeout time.Duration

	// SessionID, if set by a client, is offered in the ClientHello to
	// request resumption of a previous session — typically copied from
	// an earlier Conn's ConnectionState().SessionID. Servers ignore
	// this field; they assign their own SessionID per connection.
	SessionID []byte

	// MaxDeferredFragmentBytes bounds how many bytes of incomplete
	// (not yet fully reassembled) handshake fragments a connection will
	// hold onto at once; 0 means unbounded. Once the cap is hit, newly
	// arriving fragments for a not-yet-seen message are dropped rather
	// than evicting an older partially-assembled message — the peer's
	// own retransmission timer will retry once earlier messages
	// complete and free budget.
	MaxDeferredFragmentBytes int

	// ConnectionMetrics, if non-nil, receives Prometheus counters and
	// gauges tracking the multiplexed connection lifecycle (accepted,
	// refused, evicted, currently active). Ignored by Dial, Client and
	// Server; only Listen's connector reports against it. Register it
	// with a prometheus.Registerer before or after passing it here —
	// Listen does not register it for the caller.
	ConnectionMetrics *metrics.Collector
}

func (c *Config) includeCertificateSuites() bool {
	return c.PSK == nil || len(c.Certificates) > 0 || c.GetCertificate != nil || c.GetClientCertificate != nil
}

const defaultMTU = 1200 // bytes

var defaultCurves = []elliptic.Curve{elliptic.X25519, elliptic.P384} //nolint:gochecknoglobals

// PSKCallback resolves the pre-shared key for the given identity hint
// supplied by the remote side (nil if none was sent).
type PSKCallback func([]byte) ([]byte, error)

// ClientAuthType is the server's policy for TLS client authentication.
type ClientAuthType int

const (
	NoClientCert ClientAuthType = iota
	RequestClientCert
	RequireAnyClientCert
	VerifyClientCertIfGiven
	RequireAndVerifyClientCert
)

// ExtendedMasterSecretType is the policy for the extended master
// secret extension (RFC 7627).
type ExtendedMasterSecretType int

const (
	RequestExtendedMasterSecret ExtendedMasterSecretType = iota
	RequireExtendedMasterSecret
	DisableExtendedMasterSecret
)

func (c *Config) connectContextMaker() (context.Context, func()) {
	if c.ConnectContextMaker != nil {
		return c.ConnectContextMaker()
	}
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func validateConfig(config *Config) error {
	switch {
	case config == nil:
		return errNoConfigProvided
	case config.PSKIdentityHint != nil && config.PSK == nil:
		return errPSKAndIdentityMustBeSetForServer
	}

	for _, cert := range config.Certificates {
		if cert.Certificate == nil {
			return errNoCertificates
		}
		if cert.PrivateKey != nil {
			signer, ok := cert.PrivateKey.(crypto.Signer)
			if !ok {
				return errInvalidCipherSuite
			}
			switch signer.Public().(type) {
			case ed25519.PublicKey:
			case *ecdsa.PublicKey:
			default:
				return errInvalidCipherSuite
			}
		}
	}

	_, err := parseCipherSuites(
		config.CipherSuites, config.CustomCipherSuites, config.includeCertificateSuites(), config.PSK != nil,
	)

	return err
}
