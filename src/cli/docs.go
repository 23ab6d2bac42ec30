// Package cli implements the command-line interface for jtrust-verify.
// It wires certrepo decoding, trust.TrustValidator, and the revocation
// package's HTTP-backed OCSP/CRL repositories into a Cobra command that
// validates a certificate chain read from a file or fetched live from a
// TLS server, and renders the result as plain text, a markdown table,
// an ASCII tree, or JSON.
package cli
