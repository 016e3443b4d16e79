// Package backend is the HTTP client for the translation service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/httpclient"
	"github.com/oukeidos/panetrans/internal/intake"
)

// Backend is the set of calls the controller makes.
type Backend interface {
	Upload(ctx context.Context, f intake.File) (*UploadResponse, error)
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	TranslateSingle(ctx context.Context, req SingleRequest) (string, error)
	TranslateImage(ctx context.Context, req ImageRequest) (string, error)
	Export(ctx context.Context, req ExportRequest) (*ExportFile, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. A nil httpClient
// uses the shared default.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) client() *http.Client {
	if c.http != nil {
		return c.http
	}
	return httpclient.GetDefaultClient()
}

// Upload sends one file as multipart field "file".
func (c *Client) Upload(ctx context.Context, f intake.File) (*UploadResponse, error) {
	data, err := intake.ReadAll(f)
	if err != nil {
		return nil, apperrors.New(apperrors.KindBadRequest, err.Error(), err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name()))
	h.Set("Content-Type", intake.DetectContentType(data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.doJSON(httpReq, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.Backend(out.Error)
	}
	slog.Debug("Upload parsed", "file", f.Name(), "items", len(out.Content), "has_format", out.HasFormat)
	return &out, nil
}

// Translate sends the whole ordered content list in one request.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	var out TranslateResponse
	if err := c.postJSON(ctx, "/translate", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.Backend(out.Error)
	}
	return &out, nil
}

// TranslateSingle translates one paragraph.
func (c *Client) TranslateSingle(ctx context.Context, req SingleRequest) (string, error) {
	var out singleResponse
	if err := c.postJSON(ctx, "/translate-single", req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", apperrors.Backend(out.Error)
	}
	return out.Translation, nil
}

// TranslateImage sends one image for whole-image translation.
func (c *Client) TranslateImage(ctx context.Context, req ImageRequest) (string, error) {
	var out imageResponse
	if err := c.postJSON(ctx, "/translate_image", req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", apperrors.Backend(out.Error)
	}
	return out.Translation, nil
}

// Export asks the service to build a document. A 2xx response is the file
// itself; anything else carries a JSON error.
func (c *Client) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	httpReq, err := c.newJSONRequest(ctx, "/export", req)
	if err != nil {
		return nil, err
	}
	body, resp, err := httpclient.DoAndReadLimit(c.client(), httpReq, httpclient.MaxDownloadBytes)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, body)
	}

	file := &ExportFile{
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Filename = params["filename"]
	}
	slog.Debug("Export received", "format", req.Format, "bytes", len(body))
	return file, nil
}

func (c *Client) newJSONRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	httpReq, err := c.newJSONRequest(ctx, path, payload)
	if err != nil {
		return err
	}
	return c.doJSON(httpReq, out)
}

func (c *Client) doJSON(httpReq *http.Request, out any) error {
	body, resp, err := httpclient.DoAndRead(c.client(), httpReq)
	if err != nil {
		return transportError(err)
	}
	slog.Debug("Backend response", "path", httpReq.URL.Path, "status", resp.Status, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Validation(fmt.Errorf("failed to decode %s response: %w", httpReq.URL.Path, err))
	}
	return nil
}

func transportError(err error) error {
	return apperrors.New(
		apperrors.KindTransport,
		"Could not reach the translation service: "+rootCause(err),
		fmt.Errorf("request failed: %w", err),
	)
}

// statusError turns a non-2xx response into an error. The backend's own
// message wins when the body carries one.
func statusError(resp *http.Response, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && strings.TrimSpace(envelope.Error) != "" {
		return apperrors.Backend(envelope.Error)
	}
	cause := fmt.Errorf("backend status=%s", resp.Status)
	if resp.StatusCode >= 500 {
		return apperrors.New(
			apperrors.KindBackend,
			fmt.Sprintf("Translation service error (%d): please try again later.", resp.StatusCode),
			cause,
		)
	}
	return apperrors.New(
		apperrors.KindBadRequest,
		fmt.Sprintf("Translation service rejected the request (%d).", resp.StatusCode),
		cause,
	)
}

// rootCause strips url.Error wrapping so status lines stay short.
func rootCause(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}
