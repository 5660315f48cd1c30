package fingerprint

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile selects how the TLS connection to the search engine is made.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go"     // standard go TLS
	ProfileRandom  Profile = "random" // randomized uTLS profile
)

// Transport returns an http.RoundTripper for the profile. "go" is a clone of
// http.DefaultTransport. Every other profile dials the socket directly and
// performs a uTLS handshake with a browser ClientHello. Certificates are always
// verified; rootCAs replaces the system pool when non-nil.
func Transport(p Profile, rootCAs *x509.CertPool) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if p == ProfileGo {
		if rootCAs != nil {
			transport.TLSClientConfig = &tls.Config{RootCAs: rootCAs}
		}
		return transport, nil
	}

	clientHelloID, err := helloID(p)
	if err != nil {
		return nil, err
	}

	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := transport.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr // fallback if no port
		}

		uConn, err := newUConn(tcpConn, &utls.Config{
			ServerName: host,
			RootCAs:    rootCAs,
			NextProtos: []string{"http/1.1"},
		}, clientHelloID)
		if err != nil {
			_ = tcpConn.Close()
			return nil, err
		}

		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("utls handshake with %s: %w", host, err)
		}

		return uConn, nil
	}

	return transport, nil
}

func helloID(p Profile) (utls.ClientHelloID, error) {
	switch p {
	case ProfileChrome:
		return utls.HelloChrome_Auto, nil
	case ProfileFirefox:
		return utls.HelloFirefox_Auto, nil
	case ProfileSafari:
		return utls.HelloIOS_Auto, nil
	case ProfileRandom:
		return utls.HelloRandomizedALPN, nil
	default:
		return utls.ClientHelloID{}, fmt.Errorf("unknown profile %q", p)
	}
}

// newUConn builds the uTLS client. Browser presets advertise h2, which
// http.Transport cannot speak over a non-crypto/tls conn, so ALPN is pinned
// to http/1.1.
func newUConn(conn net.Conn, cfg *utls.Config, id utls.ClientHelloID) (*utls.UConn, error) {
	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		// Randomized profiles have no fixed spec; they take ALPN from cfg.NextProtos.
		return utls.UClient(conn, cfg, id), nil
	}

	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	uConn := utls.UClient(conn, cfg, utls.HelloCustom)
	if err := uConn.ApplyPreset(&spec); err != nil {
		return nil, fmt.Errorf("apply %s preset: %w", id.Str(), err)
	}
	return uConn, nil
}
