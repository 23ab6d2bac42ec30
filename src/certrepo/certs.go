package certrepo

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not
	// contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("certrepo: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not a
	// certificate block.
	ErrInvalidBlockType = errors.New("certrepo: invalid block type")

	// ErrParseCertificate indicates a failure to parse a certificate
	// from the provided data.
	ErrParseCertificate = errors.New("certrepo: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("certrepo: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found
	// in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("certrepo: no certificates found in PKCS7 data")
)

const certBlockType = "CERTIFICATE"

// Decoder decodes and encodes X.509 certificates in PEM, DER, and
// PKCS7 formats.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// IsPEM reports whether data is in PEM format.
func (d *Decoder) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeMultiple decodes one or more certificates from data, whether
// PEM-encoded (possibly concatenated blocks) or raw/PKCS7 DER.
func (d *Decoder) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	if d.IsPEM(data) {
		var certs []*x509.Certificate
		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != certBlockType {
				return nil, ErrInvalidBlockType
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
			data = rest
		}
		return certs, nil
	}

	certs, err := x509.ParseCertificates(data)
	if err == nil {
		return certs, nil
	}

	p, perr := pkcs7.ParsePKCS7(data)
	if perr != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// Decode decodes a single certificate, falling back to PKCS7 when the
// data is not a bare certificate.
func (d *Decoder) Decode(data []byte) (*x509.Certificate, error) {
	if d.IsPEM(data) {
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, ErrInvalidPEMBlock
		}
		if block.Type != certBlockType {
			return nil, ErrInvalidBlockType
		}
		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	p, perr := pkcs7.ParsePKCS7(data)
	if perr != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates[0], nil
}

// EncodePEM encodes a certificate to PEM.
func (d *Decoder) EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: certBlockType, Bytes: cert.Raw})
}

