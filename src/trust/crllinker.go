package trust

import (
	"context"
	"crypto/x509"
	"fmt"
	"time"
)

// defaultCRLFreshness mirrors defaultOCSPFreshness for CRL windows.
const defaultCRLFreshness = 5 * time.Minute

// CrlRepository retrieves a DER-encoded certificate revocation list
// covering cert, signed by issuer, from the distribution points
// advertised on cert or any other source the implementation chooses.
// It returns a nil list and a nil error when no list is available.
type CrlRepository interface {
	FindCrl(ctx context.Context, cert, issuer *x509.Certificate) (raw []byte, uri string, err error)
}

// CrlTrustLinker establishes trust for a (child, issuer) pair using a
// certificate revocation list fetched from CrlRepository.
type CrlTrustLinker struct {
	CrlRepository   CrlRepository
	AlgorithmPolicy AlgorithmPolicy
	// Freshness is added to nextUpdate before checking that the
	// validation date still falls inside the list's validity window.
	// Zero means defaultCRLFreshness.
	Freshness time.Duration
}

// NewCrlTrustLinker creates a CrlTrustLinker with the default
// freshness window.
func NewCrlTrustLinker(repo CrlRepository, policy AlgorithmPolicy) *CrlTrustLinker {
	return &CrlTrustLinker{CrlRepository: repo, AlgorithmPolicy: policy}
}

// HasTrustLink implements TrustLinker. Anything short of a positively
// parsed, signature-verified, fresh CRL that actually speaks about
// child is undecided, not a failure: an unreachable distribution
// point, an unparsable list, or an unverifiable signature all fall
// through to the next configured revocation linker rather than
// aborting the chain. A list signed with an algorithm the
// AlgorithmPolicy rejects is a failure, as is a listed (revoked) child.
func (l *CrlTrustLinker) HasTrustLink(child, issuer *x509.Certificate, validationDate time.Time, revocationData *RevocationData) (Verdict, error) {
	raw, uri, err := l.CrlRepository.FindCrl(context.Background(), child, issuer)
	if err != nil {
		return VerdictUndecided, nil
	}
	if raw == nil {
		return VerdictUndecided, nil
	}

	crl, err := x509.ParseRevocationList(raw)
	if err != nil {
		return VerdictUndecided, nil
	}

	if err := crl.CheckSignatureFrom(issuer); err != nil {
		return VerdictUndecided, nil
	}

	if l.AlgorithmPolicy != nil {
		if err := l.AlgorithmPolicy.CheckSignatureAlgorithm(crl.SignatureAlgorithm, validationDate); err != nil {
			return VerdictUndecided, err
		}
	}

	if err := l.checkFreshness(crl, validationDate); err != nil {
		return VerdictUndecided, nil
	}

	revocationData.AddCRL(raw, uri)

	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber.Cmp(child.SerialNumber) == 0 {
			return VerdictUndecided, NewLinkerError(ReasonInvalidRevocationStatus,
				fmt.Sprintf("certificate revoked at %s", entry.RevocationTime.Format(time.RFC3339)))
		}
	}

	return VerdictTrusted, nil
}

func (l *CrlTrustLinker) checkFreshness(crl *x509.RevocationList, validationDate time.Time) error {
	freshness := l.Freshness
	if freshness <= 0 {
		freshness = defaultCRLFreshness
	}

	if validationDate.Before(crl.ThisUpdate.Add(-freshness)) {
		return NewLinkerError(ReasonInvalidRevocationStatus, "CRL thisUpdate is in the future relative to validation date")
	}
	if !crl.NextUpdate.IsZero() && validationDate.After(crl.NextUpdate.Add(freshness)) {
		return NewLinkerError(ReasonInvalidRevocationStatus, "CRL has expired")
	}
	return nil
}
