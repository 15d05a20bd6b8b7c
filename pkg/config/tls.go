// Copyright (C) 2017 ScyllaDB

package config

import (
	"crypto/tls"

	"github.com/pkg/errors"
)

// TLSVersion specifies the lowest TLS version accepted when connecting to
// the cluster.
type TLSVersion string

// TLSVersion enumeration.
const (
	TLSv13 TLSVersion = "TLSv1.3"
	TLSv12 TLSVersion = "TLSv1.2"
	TLSv10 TLSVersion = "TLSv1.0"
)

func (m TLSVersion) MarshalText() (text []byte, err error) {
	return []byte(m), nil
}

func (m *TLSVersion) UnmarshalText(text []byte) error {
	switch v := TLSVersion(text); v {
	case TLSv13, TLSv12, TLSv10:
		*m = v
	default:
		return errors.Errorf("unsupported TLS version %q", string(text))
	}
	return nil
}

// MinVersion returns the crypto/tls version identifier, TLS 1.2 is used
// for unknown values.
func (m TLSVersion) MinVersion() uint16 {
	switch m {
	case TLSv13:
		return tls.VersionTLS13
	case TLSv10:
		return tls.VersionTLS10
	default:
		return tls.VersionTLS12
	}
}
