package report

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dwagelaar/jtrust/src/trust"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/crypto/ocsp"
)

// CertificateStatus describes one certificate's position in a chain
// and the revocation status determined for it, if any.
type CertificateStatus struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	KeySize            int       `json:"keySize"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
	RevocationStatus   string    `json:"revocationStatus"`
}

// Report is the rendered-ready outcome of a single TrustValidator run.
type Report struct {
	Chain         []*x509.Certificate
	ValidationErr error

	statuses []CertificateStatus
}

// Build assembles a Report from the chain that was validated, the
// evidence a TrustValidator collected into revocationData, and the
// error IsTrustedWithEvidence returned (nil on success).
func Build(chain []*x509.Certificate, revocationData *trust.RevocationData, validationErr error) *Report {
	return &Report{
		Chain:         chain,
		ValidationErr: validationErr,
		statuses:      buildStatuses(chain, revocationData),
	}
}

func buildStatuses(chain []*x509.Certificate, revocationData *trust.RevocationData) []CertificateStatus {
	statusBySerial := map[string]string{}
	if revocationData != nil {
		for _, evidence := range revocationData.OCSPResponses() {
			resp, err := ocsp.ParseResponse(evidence.EncodedResponse, nil)
			if err != nil {
				continue
			}
			statusBySerial[resp.SerialNumber.String()] = ocspStatusString(resp.Status)
		}
		for _, evidence := range revocationData.CRLs() {
			crl, err := x509.ParseRevocationList(evidence.EncodedCRL)
			if err != nil {
				continue
			}
			for _, entry := range crl.RevokedCertificateEntries {
				statusBySerial[entry.SerialNumber.String()] = "revoked"
			}
		}
	}

	statuses := make([]CertificateStatus, len(chain))
	for i, cert := range chain {
		status, checked := statusBySerial[cert.SerialNumber.String()]
		if !checked {
			if i == len(chain)-1 {
				status = "trust anchor"
			} else {
				status = "unchecked"
			}
		}

		keySize := 0
		pubKeyAlgo := "unknown"
		switch pub := cert.PublicKey.(type) {
		case *rsa.PublicKey:
			keySize = pub.Size() * 8
			pubKeyAlgo = "RSA"
		case *ecdsa.PublicKey:
			keySize = pub.Curve.Params().BitSize
			pubKeyAlgo = "ECDSA"
		}

		statuses[i] = CertificateStatus{
			Index:              i,
			Role:               certificateRole(i, len(chain)),
			Subject:            cert.Subject.CommonName,
			Issuer:             cert.Issuer.CommonName,
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: pubKeyAlgo,
			KeySize:            keySize,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			RevocationStatus:   status,
		}
	}
	return statuses
}

func certificateRole(index, total int) string {
	switch {
	case total == 1:
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Leaf) Certificate"
	case index == total-1:
		return "Root CA Certificate"
	default:
		return "Intermediate CA Certificate"
	}
}

func ocspStatusString(status int) string {
	switch status {
	case ocsp.Good:
		return "good"
	case ocsp.Revoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// RenderASCIITree renders the chain as an ASCII tree, marking each
// certificate good or revoked.
func (r *Report) RenderASCIITree() string {
	if len(r.statuses) == 0 {
		return "No certificates in chain\n"
	}

	var result strings.Builder
	for i, s := range r.statuses {
		connector := "├── "
		if i == len(r.statuses)-1 {
			connector = "└── "
		}

		icon := "✓"
		if s.RevocationStatus == "revoked" {
			icon = "✗"
		}

		line := fmt.Sprintf("[%s] %s", icon, s.Subject)
		if s.Role != "" {
			line += fmt.Sprintf(" (%s)", s.Role)
		}
		result.WriteString(connector + line + "\n")
	}
	return result.String()
}

// RenderTable renders the chain as a markdown table.
func (r *Report) RenderTable() string {
	if len(r.statuses) == 0 {
		return "No certificates to display\n"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Status"})

	var rows [][]string
	for _, s := range r.statuses {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Index+1),
			s.Role,
			s.Subject,
			s.Issuer,
			s.NotAfter.Format("2006-01-02"),
			fmt.Sprintf("%d-bit %s", s.KeySize, s.PublicKeyAlgorithm),
			s.RevocationStatus,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToJSON renders the report, including per-certificate status and the
// overall validation error (if any), as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	out := struct {
		Timestamp    string              `json:"timestamp"`
		Trusted      bool                `json:"trusted"`
		Error        string              `json:"error,omitempty"`
		Certificates []CertificateStatus `json:"certificates"`
	}{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Trusted:      r.ValidationErr == nil,
		Certificates: r.statuses,
	}
	if r.ValidationErr != nil {
		out.Error = r.ValidationErr.Error()
	}
	return json.MarshalIndent(out, "", "  ")
}
