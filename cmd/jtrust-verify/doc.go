// jtrust-verify is a command-line tool for validating X.509 certificate
// chains against a trust anchor set, consulting OCSP and CRL
// revocation sources along the way.
//
// # Installation
//
// Install with Go 1.23 or later:
//
//	go install github.com/dwagelaar/jtrust/cmd/jtrust-verify@latest
//
// # Usage
//
//	jtrust-verify [FLAGS] INPUT_FILE
//	jtrust-verify [FLAGS] --host example.com
//
// # Flags
//
//	-r, --roots            PEM file of trust anchors
//	    --host              fetch the chain by dialing host:port instead of reading a file
//	    --port              port to use with --host (default 443)
//	    --ocsp              consult OCSP responders for revocation status (default true)
//	    --crl               consult CRL distribution points for revocation status (default true)
//	    --at                validate as of this RFC3339 timestamp (default: now)
//	-j, --json              emit a JSON validation report
//	-t, --tree              display the chain as an ASCII tree
//	    --table             display the chain as a markdown table
//
// # Examples
//
// Validate a PEM bundle against a trust anchor file:
//
//	jtrust-verify --roots ca-bundle.pem chain.pem
//
// Validate a live server's presented chain, skipping CRL checks:
//
//	jtrust-verify --host example.com --crl=false
//
// Produce a JSON report:
//
//	jtrust-verify --roots ca-bundle.pem --json chain.pem > report.json
package main
