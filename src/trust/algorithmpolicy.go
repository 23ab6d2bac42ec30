package trust

import (
	"crypto/x509"
	"fmt"
	"time"
)

// AlgorithmPolicy decides whether a signature algorithm is acceptable
// at a given validation date. Implementations must be safe for
// concurrent use; they are consulted by every linker on every
// validation call.
type AlgorithmPolicy interface {
	// CheckSignatureAlgorithm returns a *LinkerError with
	// ReasonConstraintViolation if alg is disallowed at validationDate,
	// nil otherwise.
	CheckSignatureAlgorithm(alg x509.SignatureAlgorithm, validationDate time.Time) error
}

// sha1Cutover is the date after which SHA-1-based signature algorithms
// are rejected by DefaultAlgorithmPolicy, following the CA/Browser
// Forum's SHA-1 sunset.
var sha1Cutover = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

var disallowedAlways = map[x509.SignatureAlgorithm]bool{
	x509.MD2WithRSA: true,
	x509.MD5WithRSA: true,
}

var disallowedAfterSHA1Cutover = map[x509.SignatureAlgorithm]bool{
	x509.SHA1WithRSA:   true,
	x509.DSAWithSHA1:   true,
	x509.ECDSAWithSHA1: true,
}

// DefaultAlgorithmPolicy rejects MD2/MD5-based signatures unconditionally
// and SHA-1-based signatures at or after a configurable cutover date
// (default: the CA/Browser Forum SHA-1 sunset). Unrecognized algorithms
// (x509.UnknownSignatureAlgorithm) are rejected; everything else is
// accepted.
type DefaultAlgorithmPolicy struct {
	// SHA1Cutover overrides the date at which SHA-1 based algorithms
	// become unacceptable. Zero means use the built-in default.
	SHA1Cutover time.Time
}

// NewDefaultAlgorithmPolicy returns a policy using the built-in SHA-1
// sunset date.
func NewDefaultAlgorithmPolicy() *DefaultAlgorithmPolicy {
	return &DefaultAlgorithmPolicy{}
}

// CheckSignatureAlgorithm implements AlgorithmPolicy.
func (p *DefaultAlgorithmPolicy) CheckSignatureAlgorithm(alg x509.SignatureAlgorithm, validationDate time.Time) error {
	if alg == x509.UnknownSignatureAlgorithm {
		return NewLinkerError(ReasonConstraintViolation, "unknown signature algorithm")
	}
	if disallowedAlways[alg] {
		return NewLinkerError(ReasonConstraintViolation, fmt.Sprintf("signature algorithm %s is never acceptable", alg))
	}
	if disallowedAfterSHA1Cutover[alg] {
		cutover := p.SHA1Cutover
		if cutover.IsZero() {
			cutover = sha1Cutover
		}
		if !validationDate.UTC().Before(cutover) {
			return NewLinkerError(ReasonConstraintViolation,
				fmt.Sprintf("signature algorithm %s not acceptable after %s", alg, cutover.Format(time.RFC3339)))
		}
	}
	return nil
}
