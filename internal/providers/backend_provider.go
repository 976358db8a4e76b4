package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
)

// BackendProvider calls the routes backend REST API on behalf of one session.
type BackendProvider struct {
	BaseURL string
	Client  *http.Client
	Auth    *auth.RequestContext
	Metrics *metrics.MetricsRegistry
}

// NewBackendProvider creates a client bound to one session's request context.
func NewBackendProvider(baseURL string, rc *auth.RequestContext, m *metrics.MetricsRegistry) *BackendProvider {
	return &BackendProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		Auth:    rc,
		Metrics: m,
	}
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

type requestOptions struct {
	query       url.Values
	body        io.Reader
	contentType string
	token       string
}

func withQuery(q url.Values) func(*requestOptions) {
	return func(o *requestOptions) { o.query = q }
}

// withToken overrides the session credential for a single call.
func withToken(token string) func(*requestOptions) {
	return func(o *requestOptions) { o.token = token }
}

func withJSON(payload interface{}) func(*requestOptions) {
	return func(o *requestOptions) {
		b, err := json.Marshal(payload)
		if err != nil {
			o.body = errReader{err}
			return
		}
		o.body = bytes.NewReader(b)
		o.contentType = "application/json"
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// doRequest performs one call and decodes a 2xx JSON body into result
// when result is non-nil.
func (p *BackendProvider) doRequest(ctx context.Context, method, endpoint string, result interface{}, opts ...func(*requestOptions)) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if o.body != nil {
		b, err := io.ReadAll(o.body)
		if err != nil {
			return &ProviderError{
				Code:    constants.ErrCodeInvalidDataFormat,
				Message: "Failed to build request body",
				Err:     err,
			}
		}
		payload = b
	}

	target := p.BaseURL + endpoint
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if o.contentType != "" {
		req.Header.Set("Content-Type", o.contentType)
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Basic "+o.token)
	}
	if p.Auth != nil {
		p.Auth.Decorate(req)
	}

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		p.Metrics.ObserveBackend(endpointLabel(endpoint), method, constants.ErrCodeNetworkError, time.Since(start))
		logging.Warn("backend request failed", "method", method, "endpoint", endpoint, "error", err)
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		p.Metrics.ObserveBackend(endpointLabel(endpoint), method, constants.ErrCodeNetworkError, time.Since(start))
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Status:  resp.StatusCode,
			Message: "Failed to read response body",
			Err:     readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pe := buildHTTPError(resp.StatusCode, method, endpoint, bodyBytes)
		p.Metrics.ObserveBackend(endpointLabel(endpoint), method, pe.Code, time.Since(start))
		logging.Debug("backend returned error", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "code", pe.Code)
		return pe
	}
	p.Metrics.ObserveBackend(endpointLabel(endpoint), method, "ok", time.Since(start))

	if result == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeDecodeError,
			Status:  resp.StatusCode,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}
	return nil
}

// doMultipart uploads one file under the given form field.
func (p *BackendProvider) doMultipart(ctx context.Context, endpoint, field, filename string, file io.Reader, result interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err == nil {
		_, err = io.Copy(part, file)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to build upload body",
			Err:     err,
		}
	}

	return p.doRequest(ctx, http.MethodPost, endpoint, result, func(o *requestOptions) {
		o.body = &buf
		o.contentType = mw.FormDataContentType()
	})
}

// endpointLabel collapses numeric path segments so metric labels stay bounded.
func endpointLabel(endpoint string) string {
	segments := strings.Split(endpoint, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		numeric := true
		for _, r := range s {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
