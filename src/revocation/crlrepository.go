package revocation

import (
	"context"
	"crypto/x509"
	"fmt"
	"net/http"

	"github.com/dwagelaar/jtrust/src/internal/helper/gc"
)

// HTTPCrlRepository implements trust.CrlRepository by fetching the
// first CRL distribution point URI advertised on the certificate.
type HTTPCrlRepository struct {
	HTTPConfig *HTTPConfig
	Cache      *Cache
}

// NewHTTPCrlRepository creates a repository with its own HTTPConfig
// and an unbounded cache.
func NewHTTPCrlRepository(version string) *HTTPCrlRepository {
	return &HTTPCrlRepository{
		HTTPConfig: NewHTTPConfig(version),
		Cache:      NewCache(CacheConfig{}),
	}
}

// FindCrl implements trust.CrlRepository.
func (r *HTTPCrlRepository) FindCrl(ctx context.Context, cert, issuer *x509.Certificate) ([]byte, string, error) {
	if len(cert.CRLDistributionPoints) == 0 {
		return nil, "", nil
	}
	crlURL := cert.CRLDistributionPoints[0]

	if r.Cache != nil {
		if cached, ok := r.Cache.Get(crlURL); ok {
			return cached, crlURL, nil
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, crlURL, nil)
	if err != nil {
		return nil, crlURL, fmt.Errorf("failed to build CRL HTTP request: %w", err)
	}
	httpReq.Header.Set("User-Agent", r.HTTPConfig.GetUserAgent())

	resp, err := r.HTTPConfig.Client().Do(httpReq)
	if err != nil {
		return nil, crlURL, fmt.Errorf("CRL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, crlURL, fmt.Errorf("CRL distribution point returned status %d", resp.StatusCode)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, crlURL, fmt.Errorf("failed to read CRL: %w", err)
	}
	raw := append([]byte(nil), buf.Bytes()...)

	if r.Cache != nil {
		if parsed, err := x509.ParseRevocationList(raw); err == nil {
			r.Cache.Set(crlURL, raw, parsed.NextUpdate)
		}
	}

	return raw, crlURL, nil
}
