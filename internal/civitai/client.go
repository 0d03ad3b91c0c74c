// Package civitai implements the Civitai REST API client used to look up
// model versions by content hash and page through community images.
package civitai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
)

const (
	defaultBaseURL = "https://civitai.com/api/v1"
	defaultBackoff = 200 * time.Millisecond
	pageSize       = 100
	userAgent      = "civitai-prompt-stats/0.1.0"
)

// ErrNotFound means the registry has no record for the requested hash.
var ErrNotFound = errors.New("model not found on registry")

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Client talks to the Civitai API with per-request timeout and
// fixed-backoff retry.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	retries int
	backoff time.Duration
	log     *logging.Logger
}

// New creates a Civitai API client.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = defaultBackoff
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		retries: opts.Retries,
		backoff: backoff,
		log:     logging.Default(),
	}
}

// VersionByHash fetches the model-version record for a file hash.
func (c *Client) VersionByHash(hash string) (*ModelVersion, error) {
	endpoint := fmt.Sprintf("%s/model-versions/by-hash/%s", c.baseURL, url.PathEscape(hash))

	var version ModelVersion
	if err := c.getJSON(endpoint, &version); err != nil {
		return nil, err
	}
	if version.ID == 0 {
		return nil, ErrNotFound
	}
	return &version, nil
}

// ImagePage fetches one page of community images for a model version.
// Page indexes start at 1 and every request is independent, so a caller
// can restart from any page.
func (c *Client) ImagePage(versionID, page int, sort SortMode) ([]ImagePost, error) {
	params := url.Values{}
	params.Set("modelVersionId", strconv.Itoa(versionID))
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", string(sort))

	endpoint := fmt.Sprintf("%s/images?%s", c.baseURL, params.Encode())

	var resp imagesResponse
	if err := c.getJSON(endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// FetchPages retrieves up to maxPages pages of images. Each page is retried
// independently; a page that exhausts its retries is skipped and the posts
// collected from other pages are kept. Fetching stops early once the
// registry returns an empty page.
func (c *Client) FetchPages(versionID, maxPages int, sort SortMode) PageSet {
	var set PageSet
	for page := 1; page <= maxPages; page++ {
		items, err := c.ImagePage(versionID, page, sort)
		if err != nil {
			c.log.Warnf("images page %d failed for version %d: %v", page, versionID, err)
			set.PagesFailed++
			continue
		}
		set.PagesFetched++
		if len(items) == 0 {
			break
		}
		set.Posts = append(set.Posts, items...)
	}
	return set
}

// getJSON issues a GET with retry and decodes the JSON body into out.
func (c *Client) getJSON(endpoint string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.backoff)
		}
		err := c.doOnce(endpoint, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			return err
		}
		lastErr = err
		c.log.Debugf("request failed (attempt %d/%d): %v", attempt+1, c.retries+1, err)
	}
	return fmt.Errorf("request failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) doOnce(endpoint string, out any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
