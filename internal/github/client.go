// Package github talks to the issue-comment thread that backs the practice
// log. The thread is consumed strictly as "append a text comment" / "list
// text comments"; nothing else of the issues API is used.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 20 * time.Second
	pageSize       = 100
	acceptHeader   = "application/vnd.github+json"
	userAgent      = "ovingslogg"
)

var (
	errMissingToken = errors.New("api token required")
	errMissingOwner = errors.New("repository owner required")
	errMissingRepo  = errors.New("repository name required")
	// ErrInvalidClientConfig wraps construction failures.
	ErrInvalidClientConfig = errors.New("github: invalid client config")
	// ErrRemoteStatus indicates a non-success response from the API.
	ErrRemoteStatus = errors.New("github: unexpected response status")
)

// ClientConfig bundles what the client needs to reach one repository.
type ClientConfig struct {
	Token      string
	Owner      string
	Repository string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client appends and lists issue comments on a fixed repository.
type Client struct {
	token      string
	owner      string
	repository string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a client with validated configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingToken)
	}
	owner := strings.TrimSpace(cfg.Owner)
	if owner == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingOwner)
	}
	repository := strings.TrimSpace(cfg.Repository)
	if repository == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingRepo)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:      token,
		owner:      owner,
		repository: repository,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type commentPayload struct {
	Body string `json:"body"`
}

// AppendComment posts one comment to the issue. Any non-2xx response is an
// error; on ambiguous network failures the caller must not assume the
// append happened (no retry here, at-most-once from this layer).
func (c *Client) AppendComment(ctx context.Context, issueNumber int, body string) error {
	encoded, err := json.Marshal(commentPayload{Body: body})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.commentsURL(issueNumber), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	c.setHeaders(request)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Warn("comment append rejected",
			zap.Int("issue", issueNumber),
			zap.Int("status", response.StatusCode))
		return fmt.Errorf("%w: %d", ErrRemoteStatus, response.StatusCode)
	}

	return nil
}

// ListComments fetches every comment body on the issue in thread order,
// walking fixed-size pages until one comes back empty. A failure on any
// page fails the whole call; a truncated log must never pass for complete.
func (c *Client) ListComments(ctx context.Context, issueNumber int) ([]string, error) {
	var bodies []string
	for page := 1; ; page++ {
		batch, err := c.listPage(ctx, issueNumber, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		bodies = append(bodies, batch...)
	}
	return bodies, nil
}

type commentRecord struct {
	Body string `json:"body"`
}

func (c *Client) listPage(ctx context.Context, issueNumber, page int) ([]string, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.commentsURL(issueNumber)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrRemoteStatus, response.StatusCode)
	}

	var records []commentRecord
	if err := json.NewDecoder(response.Body).Decode(&records); err != nil {
		return nil, err
	}

	bodies := make([]string, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, record.Body)
	}
	return bodies, nil
}

func (c *Client) commentsURL(issueNumber int) string {
	return fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, c.owner, c.repository, issueNumber)
}

func (c *Client) setHeaders(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Accept", acceptHeader)
	request.Header.Set("User-Agent", userAgent)
}
