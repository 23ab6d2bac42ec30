// Package certrepo provides certificate decode/encode helpers and a
// trust-anchor repository used by package trust.
//
// Decoder supports PEM, DER, and PKCS7-wrapped inputs. Repository
// answers "is this certificate a trust point?" by encoded-byte
// equality, as required by the trust-linking pipeline's root check.
package certrepo
