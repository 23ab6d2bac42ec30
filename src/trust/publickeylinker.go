package trust

import (
	"bytes"
	"crypto/x509"
	"time"
)

// PublicKeyTrustLinker verifies the basic cryptographic relationship
// between a child certificate and its alleged issuer: subject/issuer DN
// match, signature, validity window, issuer constraints, and signature
// algorithm policy. It is always run first for a pair; revocation
// linkers assume it has already passed.
type PublicKeyTrustLinker struct {
	AlgorithmPolicy AlgorithmPolicy
}

// NewPublicKeyTrustLinker creates a linker using the given algorithm
// policy.
func NewPublicKeyTrustLinker(policy AlgorithmPolicy) *PublicKeyTrustLinker {
	return &PublicKeyTrustLinker{AlgorithmPolicy: policy}
}

// HasTrustLink implements TrustLinker.
func (l *PublicKeyTrustLinker) HasTrustLink(child, issuer *x509.Certificate, validationDate time.Time, revocationData *RevocationData) (Verdict, error) {
	if !bytes.Equal(issuer.RawSubject, child.RawIssuer) {
		return VerdictUndecided, NewLinkerError(ReasonInvalidSignature, "issuer subject does not match child issuer")
	}

	if err := child.CheckSignatureFrom(issuer); err != nil {
		return VerdictUndecided, WrapLinkerError(ReasonInvalidSignature, "signature verification failed", err)
	}

	if validationDate.Before(child.NotBefore) || validationDate.After(child.NotAfter) {
		return VerdictUndecided, NewLinkerError(ReasonInvalidValidityInterval, "validation date outside certificate validity interval")
	}

	if !issuer.IsCA {
		return VerdictUndecided, NewLinkerError(ReasonConstraintViolation, "issuer is not a CA")
	}
	if issuer.KeyUsage != 0 && issuer.KeyUsage&x509.KeyUsageCertSign == 0 {
		return VerdictUndecided, NewLinkerError(ReasonConstraintViolation, "issuer key usage does not permit certificate signing")
	}

	if l.AlgorithmPolicy != nil {
		if err := l.AlgorithmPolicy.CheckSignatureAlgorithm(child.SignatureAlgorithm, validationDate); err != nil {
			return VerdictUndecided, err
		}
	}

	return VerdictTrusted, nil
}
