package trust

import "sync"

// OCSPRevocationData records one OCSP response that was successfully
// consulted and used to decide a pair's revocation status.
type OCSPRevocationData struct {
	// EncodedResponse is the exact DER bytes returned by the
	// OcspRepository, preserved byte-for-byte.
	EncodedResponse []byte
	// URI is the responder URI that was queried, if known.
	URI string
}

// CRLRevocationData records one CRL that was successfully consulted
// and used to decide a pair's revocation status.
type CRLRevocationData struct {
	// EncodedCRL is the exact DER bytes returned by the CrlRepository,
	// preserved byte-for-byte.
	EncodedCRL []byte
	// URI is the distribution point URI that was queried.
	URI string
}

// RevocationData accumulates revocation evidence gathered during a
// single TrustValidator.IsTrusted call. It is created fresh per call,
// owned by the caller, and safe for concurrent read access once
// validation returns. Linkers append to it only when they successfully
// consulted a source; a linker that returns VerdictUndecided because no
// evidence was available MUST NOT attach anything.
type RevocationData struct {
	mu   sync.Mutex
	ocsp []OCSPRevocationData
	crl  []CRLRevocationData
}

// NewRevocationData creates a fresh, empty accumulator.
func NewRevocationData() *RevocationData {
	return &RevocationData{}
}

// AddOCSPResponse records a consulted OCSP response.
func (d *RevocationData) AddOCSPResponse(encoded []byte, uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ocsp = append(d.ocsp, OCSPRevocationData{EncodedResponse: encoded, URI: uri})
}

// AddCRL records a consulted CRL.
func (d *RevocationData) AddCRL(encoded []byte, uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.crl = append(d.crl, CRLRevocationData{EncodedCRL: encoded, URI: uri})
}

// OCSPResponses returns a copy of the recorded OCSP evidence.
func (d *RevocationData) OCSPResponses() []OCSPRevocationData {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]OCSPRevocationData, len(d.ocsp))
	copy(out, d.ocsp)
	return out
}

// CRLs returns a copy of the recorded CRL evidence.
func (d *RevocationData) CRLs() []CRLRevocationData {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]CRLRevocationData, len(d.crl))
	copy(out, d.crl)
	return out
}
