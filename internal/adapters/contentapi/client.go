// internal/adapters/contentapi/client.go
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"holidaze/internal/adapters/observability"
	"holidaze/internal/domain"
)

const (
	loginPath          = "auth/local"
	establishmentsPath = "establishments"

	// multipart field names expected by the backend upload plugin
	dataField  = "data"
	imageField = "files.image"
)

var (
	ErrBadRequest   = errors.New("contentapi: bad request")
	ErrUnauthorized = errors.New("contentapi: unauthorized")
	ErrForbidden    = errors.New("contentapi: forbidden")
	ErrNotFound     = errors.New("contentapi: not found")
)

// Client issues exactly one request per call; there are no retries.
type Client struct {
	base string
	hc   *http.Client
}

// New builds a client for base, which must end with a slash.
// timeout 0 means the request context alone bounds a call.
func New(base string, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{base: base, hc: &http.Client{Timeout: timeout}}, nil
}

// Login posts the credential pair and returns the response body untouched.
func (c *Client) Login(ctx context.Context, creds domain.LoginCredentials) (domain.AuthPayload, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	out, err := c.do(req, loginPath)
	if err != nil {
		return nil, err
	}
	if !json.Valid(out) {
		return nil, fmt.Errorf("contentapi: login response is not JSON")
	}
	return domain.AuthPayload(out), nil
}

// CreateEstablishment posts data as a JSON string field plus the image file.
func (c *Client) CreateEstablishment(ctx context.Context, token string, data domain.EstablishmentData, img domain.Image) error {
	body, contentType, err := EncodeEstablishment(data, img)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+establishmentsPath, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	_, err = c.do(req, establishmentsPath)
	return err
}

// EncodeEstablishment builds the multipart body and returns it with its content type.
func EncodeEstablishment(data domain.EstablishmentData, img domain.Image) (*bytes.Buffer, string, error) {
	js, err := data.JSON()
	if err != nil {
		return nil, "", err
	}
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if err := mw.WriteField(dataField, js); err != nil {
		return nil, "", err
	}

	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageField, quoteEscaper.Replace(img.Filename)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if img.Body != nil {
		if _, err := io.Copy(part, img.Body); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// do sends req once and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "holidaze-web/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("contentapi", endpoint, 0, time.Since(start))
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("contentapi", endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return io.ReadAll(resp.Body)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, snippet(resp.Body))
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, snippet(resp.Body))
	}
}

// snippet reads a small error body for diagnostics.
func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}
