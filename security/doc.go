// Package security holds the TLS settings the HTTP adapter applies to its
// transport.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/etc/restadapter/ca.pem",
//	    MinVersion: "1.3",
//	}
//
//	tlsConfig, err := cfg.Build()
//
// A nil or zero TLSConfig builds to nil, leaving the transport's defaults
// in place.
package security
