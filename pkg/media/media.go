// Package media uploads files directly to the media host using a signature
// issued by the portal backend. The backend never sees the file bytes.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crowncreative/portal/pkg/domain"
)

// DefaultBaseURL is the public upload API of the media host.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// ExternalServiceError is a failed upload to the media host.
type ExternalServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("media host: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "media host: " + e.Message
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsExternal reports whether err came from the media host.
func IsExternal(err error) bool {
	var extErr *ExternalServiceError
	return errors.As(err, &extErr)
}

// File is an upload source.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// Client uploads to the media host.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a media host client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// UploadURL returns the endpoint for a signature's cloud and resource type.
func (c *Client) UploadURL(sig domain.UploadSignature) string {
	resourceType := sig.ResourceType
	if resourceType == "" {
		resourceType = domain.ResourceImage
	}
	return c.baseURL + "/" + url.PathEscape(sig.CloudName) + "/" + url.PathEscape(resourceType) + "/upload"
}

// Upload streams f to the media host as a signed multipart form.
func (c *Client) Upload(ctx context.Context, sig domain.UploadSignature, f File) (*domain.MediaAsset, error) {
	if sig.CloudName == "" || sig.Signature == "" {
		return nil, &ExternalServiceError{Message: "incomplete upload signature"}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, sig, f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL(sig), pr)
	if err != nil {
		pr.Close() //nolint:errcheck
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Message: "upload failed", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort read for error message
		return nil, &ExternalServiceError{StatusCode: resp.StatusCode, Message: hostErrorMessage(body)}
	}

	var asset domain.MediaAsset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, &ExternalServiceError{Message: "decode response", Err: err}
	}
	if asset.SecureURL == "" || asset.PublicID == "" {
		return nil, &ExternalServiceError{Message: "response missing secure_url or public_id"}
	}
	if asset.Bytes == 0 {
		asset.Bytes = f.Size
	}
	return &asset, nil
}

func writeForm(mw *multipart.Writer, sig domain.UploadSignature, f File) error {
	fields := [][2]string{
		{"api_key", sig.APIKey},
		{"timestamp", strconv.FormatInt(sig.Timestamp, 10)},
		{"signature", sig.Signature},
		{"folder", sig.Folder},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return fmt.Errorf("write %s: %w", kv[0], err)
		}
	}
	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return mw.Close()
}

// hostErrorMessage extracts {"error":{"message":...}} from a media host
// error body.
func hostErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "upload rejected"
}
