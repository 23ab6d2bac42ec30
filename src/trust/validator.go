package trust

import (
	"bytes"
	"crypto/x509"
	"errors"
	"time"
)

// TrustLinker evaluates one aspect of a (child, issuer) relationship
// and returns VerdictTrusted, VerdictUndecided, or a failure. Linkers
// must be stateless with respect to a single validation call: all
// configuration is fixed at construction time.
type TrustLinker interface {
	HasTrustLink(child, issuer *x509.Certificate, validationDate time.Time, revocationData *RevocationData) (Verdict, error)
}

// CertificateRepository answers "is this certificate a trust point?"
// Implementations are consulted only for the top of a chain.
type CertificateRepository interface {
	IsTrustPoint(cert *x509.Certificate) bool
}

// Logger receives diagnostic trace messages from TrustValidator. It is
// satisfied by *logger.CLILogger and *logger.ToolLogger. A nil Logger
// is always safe to use.
type Logger interface {
	Printf(format string, v ...any)
}

// TrustValidator walks a caller-supplied ordered certificate chain. It
// first checks that the top of the chain is a trust anchor, then runs
// the mandatory PublicKeyTrustLinker and each configured revocation
// linker (in order) for every adjacent pair.
//
// A TrustValidator is safe for concurrent use across multiple
// validation calls provided its CertificateRepository, AlgorithmPolicy,
// and linkers are themselves safe for concurrent use; all of
// RevocationData is per-call and caller-owned.
type TrustValidator struct {
	certificateRepository CertificateRepository
	algorithmPolicy       AlgorithmPolicy
	revocationLinkers     []TrustLinker
	logger                Logger
}

// NewTrustValidator creates a TrustValidator backed by the given trust
// anchor repository and the default algorithm policy. Revocation
// linkers must be added separately via AddTrustLinker or
// TrustValidatorDecorator.
func NewTrustValidator(repo CertificateRepository) *TrustValidator {
	return &TrustValidator{
		certificateRepository: repo,
		algorithmPolicy:       NewDefaultAlgorithmPolicy(),
	}
}

// SetAlgorithmPolicy overrides the policy used by the mandatory basic
// linker. Linkers installed by TrustValidatorDecorator use the
// decorator's own AlgorithmPolicy, and AddDefaultTrustLinkerConfig
// replaces the validator's policy with that one.
func (v *TrustValidator) SetAlgorithmPolicy(policy AlgorithmPolicy) {
	v.algorithmPolicy = policy
}

// AddTrustLinker appends a revocation (or other non-mandatory) linker
// to the end of the configured sequence.
func (v *TrustValidator) AddTrustLinker(linker TrustLinker) {
	v.revocationLinkers = append(v.revocationLinkers, linker)
}

// SetLogger installs an optional diagnostic logger. Pass nil to disable
// tracing.
func (v *TrustValidator) SetLogger(logger Logger) {
	v.logger = logger
}

func (v *TrustValidator) tracef(format string, args ...any) {
	if v.logger != nil {
		v.logger.Printf(format, args...)
	}
}

// IsTrusted validates chain as of the current time with a fresh,
// discarded RevocationData.
func (v *TrustValidator) IsTrusted(chain []*x509.Certificate) error {
	return v.IsTrustedWithEvidence(chain, time.Now().UTC(), NewRevocationData())
}

// IsTrustedAt validates chain as of validationDate with a fresh,
// discarded RevocationData.
func (v *TrustValidator) IsTrustedAt(chain []*x509.Certificate, validationDate time.Time) error {
	return v.IsTrustedWithEvidence(chain, validationDate, NewRevocationData())
}

// IsTrustedWithEvidence validates chain as of validationDate, recording
// any revocation evidence consulted into revocationData. revocationData
// must not be nil.
func (v *TrustValidator) IsTrustedWithEvidence(chain []*x509.Certificate, validationDate time.Time, revocationData *RevocationData) error {
	if len(chain) == 0 {
		return NewLinkerError(ReasonNoTrust, "empty certificate chain")
	}
	validationDate = validationDate.UTC()

	root := chain[len(chain)-1]
	selfSigned := isSelfSigned(root)
	trustPoint := v.certificateRepository != nil && v.certificateRepository.IsTrustPoint(root)

	if !trustPoint {
		v.tracef("root %s is not a repository trust point", root.Subject)
		return NewLinkerError(ReasonRootNotTrusted, "chain root is not a trust anchor")
	}

	if selfSigned {
		basic := NewPublicKeyTrustLinker(v.algorithmPolicy)
		if _, err := basic.HasTrustLink(root, root, validationDate, revocationData); err != nil {
			v.tracef("root %s failed self-link check: %v", root.Subject, err)
			return translateBasicFailure(err)
		}
	}

	for i := 0; i <= len(chain)-2; i++ {
		child, issuer := chain[i], chain[i+1]

		basic := NewPublicKeyTrustLinker(v.algorithmPolicy)
		if _, err := basic.HasTrustLink(child, issuer, validationDate, revocationData); err != nil {
			v.tracef("basic link failed for %s -> %s: %v", child.Subject, issuer.Subject, err)
			return translateBasicFailure(err)
		}

		decided := false
		for _, linker := range v.revocationLinkers {
			verdict, err := linker.HasTrustLink(child, issuer, validationDate, revocationData)
			if err != nil {
				v.tracef("revocation linker failed for %s -> %s: %v", child.Subject, issuer.Subject, err)
				return err
			}
			if verdict == VerdictTrusted {
				decided = true
				v.tracef("revocation satisfied for %s -> %s", child.Subject, issuer.Subject)
				break
			}
		}

		if len(v.revocationLinkers) > 0 && !decided {
			v.tracef("no revocation linker could decide %s -> %s", child.Subject, issuer.Subject)
			return NewLinkerError(ReasonNoTrust, "no revocation linker could establish trust for this pair")
		}
	}

	return nil
}

// translateBasicFailure passes LinkerErrors through unchanged; any
// other error (should not normally occur) is wrapped as
// INVALID_SIGNATURE, the most common cause of a basic-linker failure.
func translateBasicFailure(err error) error {
	var le *LinkerError
	if errors.As(err, &le) {
		return le
	}
	return WrapLinkerError(ReasonInvalidSignature, "basic trust link failed", err)
}

func isSelfSigned(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer) && cert.CheckSignatureFrom(cert) == nil
}

// TrustValidatorDecorator assembles the default linker configuration:
// OCSP first, then CRL, each wired to the given repositories and
// algorithm policy.
type TrustValidatorDecorator struct {
	OcspRepository  OcspRepository
	CrlRepository   CrlRepository
	AlgorithmPolicy AlgorithmPolicy
	// Freshness is the tolerance applied around an OCSP/CRL response's
	// validity window. Zero means use each linker's built-in default.
	Freshness time.Duration
}

// AddDefaultTrustLinkerConfig installs OCSP then CRL onto v, and sets
// v's algorithm policy to d.AlgorithmPolicy (or the default policy if
// unset).
func (d *TrustValidatorDecorator) AddDefaultTrustLinkerConfig(v *TrustValidator) {
	policy := d.AlgorithmPolicy
	if policy == nil {
		policy = NewDefaultAlgorithmPolicy()
	}
	v.SetAlgorithmPolicy(policy)

	if d.OcspRepository != nil {
		linker := NewOcspTrustLinker(d.OcspRepository, policy)
		if d.Freshness > 0 {
			linker.Freshness = d.Freshness
		}
		v.AddTrustLinker(linker)
	}
	if d.CrlRepository != nil {
		linker := NewCrlTrustLinker(d.CrlRepository, policy)
		if d.Freshness > 0 {
			linker.Freshness = d.Freshness
		}
		v.AddTrustLinker(linker)
	}
}
