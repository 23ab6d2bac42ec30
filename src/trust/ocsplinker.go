package trust

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"time"

	"golang.org/x/crypto/ocsp"
)

// defaultOCSPFreshness is the tolerance applied around an OCSP
// response's thisUpdate/nextUpdate window when neither bound would
// otherwise cover the validation date.
const defaultOCSPFreshness = 5 * time.Minute

// OIDOCSPNoCheck is the id-pkix-ocsp-nocheck extension OID. A delegated
// OCSP responder certificate must carry it.
var OIDOCSPNoCheck = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}

// OcspRepository retrieves a raw OCSP response for cert from the AIA
// URIs advertised on cert, or any other source the implementation
// chooses. It returns (nil, nil) when no response is available and the
// caller should fall back to the next revocation linker, and a non-nil
// error only when the responder itself signalled failure (so the
// caller can distinguish OCSP_UNAVAILABLE from "try CRL instead").
type OcspRepository interface {
	FindOcspResponse(ctx context.Context, cert, issuer *x509.Certificate) ([]byte, string, error)
}

// OcspTrustLinker establishes trust for a (child, issuer) pair using an
// OCSP response fetched from OcspRepository. It implements the
// delegated-responder chain of trust: a responder certificate
// explicitly authorized by issuer to sign OCSP responses for it.
type OcspTrustLinker struct {
	OcspRepository  OcspRepository
	AlgorithmPolicy AlgorithmPolicy
	// Freshness is added to nextUpdate and subtracted from thisUpdate
	// before checking that the validation date falls inside the
	// response's window. Zero means defaultOCSPFreshness.
	Freshness time.Duration
}

// NewOcspTrustLinker creates an OcspTrustLinker with the default
// freshness window.
func NewOcspTrustLinker(repo OcspRepository, policy AlgorithmPolicy) *OcspTrustLinker {
	return &OcspTrustLinker{OcspRepository: repo, AlgorithmPolicy: policy}
}

// HasTrustLink implements TrustLinker. A response that cannot be
// parsed, whose signature does not verify, whose CertID does not match
// child, whose responder certificate simply wasn't the one issuer
// authorized, or that falls outside its freshness window is not a
// failure of the pair: it is undecided, and the validator falls
// through to the next configured revocation linker (typically CRL). A
// disallowed signature algorithm or a policy violation on the
// responder certificate itself is a definitive constraint violation
// and aborts validation, same as a positively Revoked status.
func (l *OcspTrustLinker) HasTrustLink(child, issuer *x509.Certificate, validationDate time.Time, revocationData *RevocationData) (Verdict, error) {
	raw, uri, err := l.OcspRepository.FindOcspResponse(context.Background(), child, issuer)
	if err != nil {
		return VerdictUndecided, WrapLinkerError(ReasonOCSPUnavailable, "OCSP responder unavailable", err)
	}
	if raw == nil {
		return VerdictUndecided, nil
	}

	// ParseResponseForCert verifies the signature against issuer (or an
	// embedded delegated responder certificate) and independently
	// recomputes the RFC 6960 CertID issuer-name-hash/issuer-key-hash/
	// serial-number triple against child/issuer, rejecting a response
	// that merely happens to share child's serial number. Any failure
	// here — bad signature, wrong CertID — is an unverifiable response,
	// not a revocation decision, so it yields UNDECIDED.
	resp, err := ocsp.ParseResponseForCert(raw, child, issuer)
	if err != nil {
		return VerdictUndecided, nil
	}

	if l.AlgorithmPolicy != nil {
		if err := l.AlgorithmPolicy.CheckSignatureAlgorithm(resp.SignatureAlgorithm, validationDate); err != nil {
			return VerdictUndecided, err
		}
	}

	if soft, err := l.verifyResponder(resp, issuer, validationDate); err != nil {
		if soft {
			return VerdictUndecided, nil
		}
		return VerdictUndecided, err
	}

	if err := l.checkFreshness(resp, validationDate); err != nil {
		return VerdictUndecided, nil
	}

	revocationData.AddOCSPResponse(raw, uri)

	switch resp.Status {
	case ocsp.Good:
		return VerdictTrusted, nil
	case ocsp.Revoked:
		return VerdictUndecided, NewLinkerError(ReasonInvalidRevocationStatus,
			fmt.Sprintf("certificate revoked at %s", resp.RevokedAt.Format(time.RFC3339)))
	default:
		return VerdictUndecided, NewLinkerError(ReasonInvalidRevocationStatus, "OCSP responder returned unknown status")
	}
}

// verifyResponder checks that resp was signed either directly by
// issuer, by issuer re-asserting its own certificate as the responder,
// or by a delegated responder certificate that issuer authorized for
// that purpose.
//
// It returns soft=true for checks the validator must treat as
// undecided rather than a failure (a responder certificate that simply
// isn't the one issuer authorized: wrong issuer, missing nocheck,
// missing the OCSPSigning EKU). soft=false marks a definitive policy
// violation on the responder certificate itself (a disallowed
// signature algorithm, an invalid validity interval, or any other
// failure surfaced by the embedded PublicKeyTrustLinker check), which
// must abort validation like any other constraint violation.
func (l *OcspTrustLinker) verifyResponder(resp *ocsp.Response, issuer *x509.Certificate, validationDate time.Time) (soft bool, err error) {
	if resp.Certificate == nil {
		// golang.org/x/crypto/ocsp already verified the signature
		// against issuer while parsing when no embedded certificate is
		// present.
		return false, nil
	}

	responder := resp.Certificate

	if bytes.Equal(responder.Raw, issuer.Raw) {
		// The issuing CA embedded its own certificate as the responder:
		// self-signing OCSP is always authorized.
		return false, nil
	}

	if !bytes.Equal(responder.RawIssuer, issuer.RawSubject) {
		return true, NewLinkerError(ReasonInvalidSignature, "OCSP responder certificate was not issued by the certificate issuer")
	}

	if !hasOCSPNoCheck(responder) {
		return true, NewLinkerError(ReasonConstraintViolation, "OCSP responder certificate is missing the id-pkix-ocsp-nocheck extension")
	}

	authorized := false
	for _, eku := range responder.ExtKeyUsage {
		if eku == x509.ExtKeyUsageOCSPSigning {
			authorized = true
			break
		}
	}
	if !authorized {
		return true, NewLinkerError(ReasonConstraintViolation, "OCSP responder certificate lacks the OCSPSigning extended key usage")
	}

	basic := NewPublicKeyTrustLinker(l.AlgorithmPolicy)
	if _, err := basic.HasTrustLink(responder, issuer, validationDate, NewRevocationData()); err != nil {
		return false, err
	}

	return false, nil
}

// checkFreshness verifies validationDate falls within resp's
// thisUpdate/nextUpdate window, widened by the configured freshness
// tolerance.
func (l *OcspTrustLinker) checkFreshness(resp *ocsp.Response, validationDate time.Time) error {
	freshness := l.Freshness
	if freshness <= 0 {
		freshness = defaultOCSPFreshness
	}

	if validationDate.Before(resp.ThisUpdate.Add(-freshness)) {
		return NewLinkerError(ReasonInvalidRevocationStatus, "OCSP response thisUpdate is in the future relative to validation date")
	}
	if !resp.NextUpdate.IsZero() && validationDate.After(resp.NextUpdate.Add(freshness)) {
		return NewLinkerError(ReasonInvalidRevocationStatus, "OCSP response has expired")
	}
	return nil
}

func hasOCSPNoCheck(cert *x509.Certificate) bool {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(OIDOCSPNoCheck) {
			return true
		}
	}
	return false
}
