// Package tlsroots builds the trusted root pool for outbound HTTPS.
//
// The pool starts from the system roots; extra CA certificates (for
// example a TLS-intercepting proxy) are added from PEM files. HTTPClient
// returns an *http.Client that trusts the pool.
package tlsroots
