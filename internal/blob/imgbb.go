package blob

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the ImgBB upload endpoint.
const DefaultBaseURL = "https://api.imgbb.com/1/upload"

var ErrUploadFailed = errors.New("image upload failed")

// ImgBBClient uploads raw image bytes to ImgBB and returns the public URL.
// Failures are terminal for the enclosing request; nothing is retried here.
type ImgBBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewImgBBClient(apiKey string) *ImgBBClient {
	return &ImgBBClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewImgBBClientWithBaseURL exists for tests pointed at a local server.
func NewImgBBClientWithBaseURL(apiKey, baseURL string) *ImgBBClient {
	c := NewImgBBClient(apiKey)
	c.baseURL = baseURL
	return c
}

type imgbbResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload posts the image as base64 form data and returns the hosted URL.
func (c *ImgBBClient) Upload(ctx context.Context, image []byte) (string, error) {
	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(image))

	endpoint := c.baseURL + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	var parsed imgbbResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("%w: response missing url", ErrUploadFailed)
	}

	return parsed.Data.URL, nil
}
