package revocation

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"net/http"

	"github.com/dwagelaar/jtrust/src/internal/helper/gc"
	"golang.org/x/crypto/ocsp"
)

// HTTPOcspRepository implements trust.OcspRepository by posting an
// RFC 6960 request to the first OCSP responder URI advertised on the
// certificate.
type HTTPOcspRepository struct {
	HTTPConfig *HTTPConfig
	Cache      *Cache
}

// NewHTTPOcspRepository creates a repository with its own HTTPConfig
// and an unbounded cache.
func NewHTTPOcspRepository(version string) *HTTPOcspRepository {
	return &HTTPOcspRepository{
		HTTPConfig: NewHTTPConfig(version),
		Cache:      NewCache(CacheConfig{}),
	}
}

// FindOcspResponse implements trust.OcspRepository.
func (r *HTTPOcspRepository) FindOcspResponse(ctx context.Context, cert, issuer *x509.Certificate) ([]byte, string, error) {
	if len(cert.OCSPServer) == 0 {
		return nil, "", nil
	}
	responderURL := cert.OCSPServer[0]

	if r.Cache != nil {
		if cached, ok := r.Cache.Get(cacheKey(responderURL, cert.SerialNumber.String())); ok {
			return cached, responderURL, nil
		}
	}

	reqDER, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return nil, responderURL, fmt.Errorf("failed to build OCSP request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, responderURL, bytes.NewReader(reqDER))
	if err != nil {
		return nil, responderURL, fmt.Errorf("failed to build OCSP HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/ocsp-request")
	httpReq.Header.Set("Accept", "application/ocsp-response")
	httpReq.Header.Set("User-Agent", r.HTTPConfig.GetUserAgent())

	resp, err := r.HTTPConfig.Client().Do(httpReq)
	if err != nil {
		return nil, responderURL, fmt.Errorf("OCSP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responderURL, fmt.Errorf("OCSP responder returned status %d", resp.StatusCode)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, responderURL, fmt.Errorf("failed to read OCSP response: %w", err)
	}
	raw := append([]byte(nil), buf.Bytes()...)

	if r.Cache != nil {
		if parsed, err := ocsp.ParseResponse(raw, issuer); err == nil {
			r.Cache.Set(cacheKey(responderURL, cert.SerialNumber.String()), raw, parsed.NextUpdate)
		}
	}

	return raw, responderURL, nil
}

func cacheKey(uri, serial string) string { return uri + "#" + serial }
