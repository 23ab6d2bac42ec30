// Package revocation implements the default HTTP-backed OcspRepository
// and CrlRepository used by package trust: it fetches OCSP responses
// and CRLs from the URIs advertised on a certificate's AIA and CRL
// distribution point extensions, and caches the raw responses between
// lookups.
package revocation
