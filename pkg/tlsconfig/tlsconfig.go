package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ErrIncomplete is returned when only some of the PEM files are set
var ErrIncomplete = errors.New("tls: cert, key and CA must all be set")

// Files names the PEM files for one side of an mTLS connection
type Files struct {
	Cert string
	Key  string
	CA   string
}

// Enabled reports whether any file is configured
func (f Files) Enabled() bool {
	return f.Cert != "" || f.Key != "" || f.CA != ""
}

// Validate rejects a partially configured set
func (f Files) Validate() error {
	if f.Enabled() && (f.Cert == "" || f.Key == "" || f.CA == "") {
		return ErrIncomplete
	}
	return nil
}

// LoadServerTLS creates a tls.Config for a gRPC server requiring client certs (mTLS).
func LoadServerTLS(f Files) (*tls.Config, error) {
	cert, pool, err := load(f)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// LoadClientTLS creates a tls.Config for a gRPC client that presents a cert (mTLS).
// serverName overrides the name checked against the server certificate.
func LoadClientTLS(f Files, serverName string) (*tls.Config, error) {
	cert, pool, err := load(f)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ServerName:   serverName,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func load(f Files) (tls.Certificate, *x509.CertPool, error) {
	if err := f.Validate(); err != nil {
		return tls.Certificate{}, nil, err
	}

	cert, err := tls.LoadX509KeyPair(f.Cert, f.Key)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("load key pair: %w", err)
	}

	caCert, err := os.ReadFile(f.CA)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("read CA cert: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return tls.Certificate{}, nil, fmt.Errorf("failed to parse CA certificate %s", f.CA)
	}
	return cert, pool, nil
}
