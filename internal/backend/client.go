// Package backend calls the document and packet endpoints of a remote
// intake deployment on behalf of local sessions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/intake"
	"github.com/JaimeStill/intake/internal/packets"
	"github.com/JaimeStill/intake/pkg/handlers"
)

var ErrInvalidURL = errors.New("invalid backend url")

// Client implements intake.Backend over HTTP.
type Client struct {
	base   string
	token  string
	http   *http.Client
	logger *slog.Logger
}

// New creates a client rooted at baseURL, which includes the remote API
// base path. A zero timeout leaves requests bounded only by their context.
func New(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	return &Client{
		base:   strings.TrimSuffix(u.String(), "/"),
		token:  token,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With("system", "backend", "url", u.Host),
	}, nil
}

func (c *Client) Ingest(ctx context.Context, target intake.Target, docType string, files []documents.File) ([]documents.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mw.WriteField("entity_type", target.EntityType)
	mw.WriteField("entity_id", target.EntityID)
	if docType != "" {
		mw.WriteField("type", docType)
	}

	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		hdr.Set("Content-Type", ct)

		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var docs []documents.Document
	err := c.do(ctx, http.MethodPost, "/documents", mw.FormDataContentType(), &buf, http.StatusCreated, &docs)
	return docs, err
}

func (c *Client) GeneratePDF(ctx context.Context, transactionID string) (*packets.Packet, error) {
	var packet packets.Packet
	if err := c.do(ctx, http.MethodPost, "/packets/"+url.PathEscape(transactionID), "", nil, http.StatusCreated, &packet); err != nil {
		return nil, err
	}
	return &packet, nil
}

func (c *Client) ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error) {
	var result documents.SignatureResult
	if err := c.do(ctx, http.MethodGet, "/documents/"+id.String()+"/signature", "", nil, http.StatusOK, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

func (c *Client) Approve(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/documents/"+id.String()+"/approve", "", nil, http.StatusOK, nil)
}

func (c *Client) Reject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/documents/"+id.String()+"/reject", "", nil, http.StatusOK, nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", intake.ErrNetwork, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", intake.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != want {
		return responseError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", intake.ErrNetwork, method, path, err)
	}
	return nil
}

// responseError classifies a rejected call. Content rejections are
// validation errors, other client errors are business errors, and server
// errors count as failed requests.
func responseError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)

	var body handlers.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusRequestEntityTooLarge,
		resp.StatusCode == http.StatusUnsupportedMediaType,
		resp.StatusCode == http.StatusUnprocessableEntity:
		kind = intake.ErrValidation
	case resp.StatusCode >= 500:
		kind = intake.ErrNetwork
	default:
		kind = intake.ErrBusiness
	}

	return fmt.Errorf("%w: %s (%d)", kind, msg, resp.StatusCode)
}
