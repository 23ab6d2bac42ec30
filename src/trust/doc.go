// Package trust implements a pluggable trust-linking pipeline for X.509
// certificate chains. For each adjacent (child, issuer) pair in a
// caller-supplied ordered chain, a sequence of TrustLinkers — basic
// cryptographic, OCSP, CRL, and policy — are consulted in order and
// their partial verdicts are resolved into a final decision by a
// TrustValidator.
//
// The package performs no network I/O itself: OCSP and CRL retrieval is
// delegated to the OcspRepository and CrlRepository interfaces, whose
// default HTTP-backed implementations live in package revocation.
package trust
