package revocation_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"
)

type testPKI struct {
	issuerCert *x509.Certificate
	issuerKey  *rsa.PrivateKey
	leafCert   *x509.Certificate
}

func buildTestPKI(t *testing.T, ocspURL, crlURL string) *testPKI {
	t.Helper()
	now := time.Now().UTC()

	issuerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	issuerTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "revocation test issuer"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
	}
	issuerDER, err := x509.CreateCertificate(rand.Reader, issuerTmpl, issuerTmpl, &issuerKey.PublicKey, issuerKey)
	require.NoError(t, err)
	issuerCert, err := x509.ParseCertificate(issuerDER)
	require.NoError(t, err)

	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	leafTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(2),
		Subject:               pkix.Name{CommonName: "revocation test leaf"},
		NotBefore:              now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
	}
	if ocspURL != "" {
		leafTmpl.OCSPServer = []string{ocspURL}
	}
	if crlURL != "" {
		leafTmpl.CRLDistributionPoints = []string{crlURL}
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, issuerCert, &leafKey.PublicKey, issuerKey)
	require.NoError(t, err)
	leafCert, err := x509.ParseCertificate(leafDER)
	require.NoError(t, err)

	return &testPKI{issuerCert: issuerCert, issuerKey: issuerKey, leafCert: leafCert}
}

func buildOCSPGoodResponse(t *testing.T, pki *testPKI) []byte {
	t.Helper()
	now := time.Now().UTC()
	tmpl := ocsp.Response{
		Status:       ocsp.Good,
		SerialNumber: pki.leafCert.SerialNumber,
		ThisUpdate:   now.Add(-time.Minute),
		NextUpdate:   now.Add(time.Hour),
	}
	raw, err := ocsp.CreateResponse(pki.issuerCert, pki.issuerCert, tmpl, pki.issuerKey)
	require.NoError(t, err)
	return raw
}

func buildCRL(t *testing.T, pki *testPKI) []byte {
	t.Helper()
	now := time.Now().UTC()
	tmpl := &x509.RevocationList{
		Number:     big.NewInt(1),
		ThisUpdate: now.Add(-time.Minute),
		NextUpdate: now.Add(time.Hour),
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, pki.issuerCert, pki.issuerKey)
	require.NoError(t, err)
	return der
}
