package trust_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/dwagelaar/jtrust/src/trust"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"
)

var oidOCSPNoCheck = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}

var assertErr = errors.New("repository unavailable")

// rejectAllAlgorithmPolicy rejects every signature algorithm, for
// exercising the hard-fail path a disallowed algorithm must take.
type rejectAllAlgorithmPolicy struct{}

func (rejectAllAlgorithmPolicy) CheckSignatureAlgorithm(alg x509.SignatureAlgorithm, validationDate time.Time) error {
	return trust.NewLinkerError(trust.ReasonConstraintViolation, "signature algorithm rejected by policy")
}

type pkiFixture struct {
	rootCert *x509.Certificate
	rootKey  *rsa.PrivateKey

	intermediateCert *x509.Certificate
	intermediateKey  *rsa.PrivateKey

	leafCert *x509.Certificate
	leafKey  *rsa.PrivateKey

	responderCert *x509.Certificate
	responderKey  *rsa.PrivateKey
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signCert(t *testing.T, tmpl, parent *x509.Certificate, pub any, signerKey any) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

// buildPKI assembles a self-signed root, an intermediate CA it signs,
// a leaf certificate signed by the intermediate, and a delegated OCSP
// responder certificate for the intermediate.
func buildPKI(t *testing.T) *pkiFixture {
	t.Helper()
	now := time.Now().UTC()

	rootKey := newRSAKey(t)
	rootTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "jtrust test root"},
		NotBefore:             now.Add(-24 * time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	rootCert := signCert(t, rootTmpl, rootTmpl, &rootKey.PublicKey, rootKey)

	intermediateKey := newRSAKey(t)
	intermediateTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(2),
		Subject:               pkix.Name{CommonName: "jtrust test intermediate"},
		NotBefore:             now.Add(-24 * time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	intermediateCert := signCert(t, intermediateTmpl, rootCert, &intermediateKey.PublicKey, rootKey)

	leafKey := newRSAKey(t)
	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject:      pkix.Name{CommonName: "jtrust test leaf"},
		NotBefore:    now.Add(-24 * time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafCert := signCert(t, leafTmpl, intermediateCert, &leafKey.PublicKey, intermediateKey)

	responderKey := newRSAKey(t)
	responderTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(4),
		Subject:      pkix.Name{CommonName: "jtrust test ocsp responder"},
		NotBefore:    now.Add(-24 * time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
		ExtraExtensions: []pkix.Extension{
			{Id: oidOCSPNoCheck, Value: []byte{0x05, 0x00}},
		},
	}
	responderCert := signCert(t, responderTmpl, intermediateCert, &responderKey.PublicKey, intermediateKey)

	return &pkiFixture{
		rootCert:         rootCert,
		rootKey:          rootKey,
		intermediateCert: intermediateCert,
		intermediateKey:  intermediateKey,
		leafCert:         leafCert,
		leafKey:          leafKey,
		responderCert:    responderCert,
		responderKey:     responderKey,
	}
}

// ocspResponse builds a DER-encoded OCSP response for cert, signed by
// signerCert/signerKey (either the issuer directly, or a delegated
// responder), with the given status.
func ocspResponse(t *testing.T, cert, issuer, signerCert *x509.Certificate, signerKey any, status int, window time.Duration) []byte {
	t.Helper()
	now := time.Now().UTC()
	tmpl := ocsp.Response{
		Status:       status,
		SerialNumber: cert.SerialNumber,
		ThisUpdate:   now.Add(-window / 2),
		NextUpdate:   now.Add(window / 2),
	}
	if status == ocsp.Revoked {
		tmpl.RevokedAt = now.Add(-time.Hour)
		tmpl.RevocationReason = ocsp.Unspecified
	}
	if signerCert != issuer {
		tmpl.Certificate = signerCert
	}
	raw, err := ocsp.CreateResponse(issuer, signerCert, tmpl, signerKey.(*rsa.PrivateKey))
	require.NoError(t, err)
	return raw
}

// crl builds a DER-encoded CRL signed by issuer/issuerKey, listing
// revoked as revoked.
func crl(t *testing.T, issuer *x509.Certificate, issuerKey any, revoked []*big.Int, window time.Duration) []byte {
	t.Helper()
	now := time.Now().UTC()
	var entries []x509.RevocationListEntry
	for _, serial := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   serial,
			RevocationTime: now.Add(-time.Hour),
		})
	}
	tmpl := &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                now.Add(-window / 2),
		NextUpdate:                now.Add(window / 2),
		RevokedCertificateEntries: entries,
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, issuer, issuerKey.(*rsa.PrivateKey))
	require.NoError(t, err)
	return der
}
