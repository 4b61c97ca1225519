package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/subfile-network/subfile/internal/subfileerr"
)

// IPFSClient speaks the IPFS HTTP API (/api/v0/cat, /api/v0/add) with a
// plain net/http client: no dedicated SDK, just http.Client and
// http.NewRequestWithContext.
type IPFSClient struct {
	baseURL string
	client  *http.Client
}

// NewIPFSClient returns a client against the given IPFS API base URL
// (e.g. "http://127.0.0.1:5001").
func NewIPFSClient(baseURL string) *IPFSClient {
	return &IPFSClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Cat returns the content addressed by hash. The context should carry a
// deadline; callers that don't set one get the reference 10s timeout via
// WithCatTimeout.
func (c *IPFSClient) Cat(ctx context.Context, hash string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = WithCatTimeout(ctx)
		defer cancel()
	}
	url := fmt.Sprintf("%s/api/v0/cat?arg=%s", c.baseURL, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build cat request: %v", subfileerr.ErrStore, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: cat %s: %v", subfileerr.ErrTimeout, hash, err)
		}
		return nil, fmt.Errorf("%w: cat %s: %v", subfileerr.ErrStore, hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", subfileerr.ErrNotFound, hash)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cat %s: unexpected status %d", subfileerr.ErrStore, hash, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read cat response for %s: %v", subfileerr.ErrStore, hash, err)
	}
	return body, nil
}

// Add uploads data as a single-file multipart request and returns the
// assigned content hash.
func (c *IPFSClient) Add(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "blob")
	if err != nil {
		return "", fmt.Errorf("%w: build add request: %v", subfileerr.ErrStore, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: build add request: %v", subfileerr.ErrStore, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: build add request: %v", subfileerr.ErrStore, err)
	}

	url := fmt.Sprintf("%s/api/v0/add", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("%w: build add request: %v", subfileerr.ErrStore, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: add: %v", subfileerr.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: add: unexpected status %d", subfileerr.ErrStore, resp.StatusCode)
	}

	var added AddResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", fmt.Errorf("%w: decode add response: %v", subfileerr.ErrStore, err)
	}
	return added.Hash, nil
}

// AddResponse is the JSON body the IPFS /api/v0/add endpoint returns.
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// CatTimeout is the reference default deadline for Cat calls.
const CatTimeout = 10 * time.Second

// WithCatTimeout returns a context bounded by CatTimeout, for callers that
// don't already carry a deadline.
func WithCatTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, CatTimeout)
}
