package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/models"
)

// API is the provider surface the synchronization engine depends on.
type API interface {
	ListTeamProjects(ctx context.Context, teamIDs []string) ([]models.TeamProjects, error)
	ProjectFiles(ctx context.Context, projectID string) ([]models.FileRecord, error)
	FilePages(ctx context.Context, fileKey string) ([]models.Page, error)
}

// Client implements API over HTTP.
type Client struct {
	baseURL       string
	creds         CredentialSource
	personalToken string
	httpClient    *http.Client
	maxRetries    int
	sleep         SleepFunc
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the REST root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many extra attempts follow a 429.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithPersonalToken sets the static secret used for personal credentials
// whose token is empty.
func WithPersonalToken(token string) Option {
	return func(c *Client) { c.personalToken = token }
}

// WithSleep replaces the wait between rate-limit retries.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a provider client that authenticates with creds.
func NewClient(creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: DefaultMaxRetries,
		sleep:      sleep,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authorize attaches exactly one authentication header.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	var (
		cred models.Credential
		err  = ErrNoCredential
	)
	if c.creds != nil {
		cred, err = c.creds.Credential(ctx)
	}
	if err != nil {
		if c.personalToken == "" {
			return fmt.Errorf("credential: %w", err)
		}
		cred = models.Credential{Type: models.CredentialPersonal}
	}

	switch cred.Type {
	case models.CredentialDelegated:
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	default:
		token := cred.Token
		if token == "" {
			token = c.personalToken
		}
		if token == "" {
			return fmt.Errorf("credential: %w", ErrNoCredential)
		}
		req.Header.Set(personalTokenHeader, token)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// Request sends method to path, retrying on 429, and decodes a 2xx JSON
// body into out (which may be nil). The request body is re-sent on retry.
func (c *Client) Request(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body []byte
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = data
	}

	attempts := 0
	for {
		resp, err := c.do(ctx, method, path, body)
		if err != nil {
			return err
		}
		c.metrics.RecordResponse(resp.StatusCode)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			if attempts >= c.maxRetries {
				return &RateLimitError{Attempts: attempts + 1, Response: resp}
			}
			attempts++
			delay := retryDelay(resp, attempts)
			c.logger.Warn("rate limited, retrying",
				"path", path,
				"attempt", attempts,
				"max_retries", c.maxRetries,
				"retry_after", delay,
			)
			c.metrics.RecordRateLimitRetry()
			if err := c.sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s %s: rate limit wait cancelled: %w", method, path, err)
			}

		case resp.StatusCode == http.StatusForbidden:
			drain(resp)
			return &AuthExpiredError{Response: resp}

		default:
			drain(resp)
			return &HTTPError{
				Status:     resp.StatusCode,
				StatusText: statusText(resp),
				Response:   resp,
			}
		}
	}
}

// drain discards and closes the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

// statusText strips the numeric prefix from resp.Status.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// TeamProjects lists the projects of a single team.
func (c *Client) TeamProjects(ctx context.Context, teamID string) (*models.TeamProjects, error) {
	var resp TeamProjectsResponse
	if err := c.Request(ctx, http.MethodGet, "/teams/"+teamID+"/projects", nil, &resp); err != nil {
		return nil, fmt.Errorf("list projects of team %s: %w", teamID, err)
	}
	tp := resp.toModel(teamID)
	return &tp, nil
}

// ProjectFiles lists the files of a project, including branch data.
func (c *Client) ProjectFiles(ctx context.Context, projectID string) ([]models.FileRecord, error) {
	var resp ProjectFilesResponse
	if err := c.Request(ctx, http.MethodGet, "/projects/"+projectID+"/files?branch_data=true", nil, &resp); err != nil {
		return nil, fmt.Errorf("list files of project %s: %w", projectID, err)
	}
	if resp.Files == nil {
		return []models.FileRecord{}, nil
	}
	return resp.Files, nil
}

// FilePages returns the top-level pages of a file.
func (c *Client) FilePages(ctx context.Context, fileKey string) ([]models.Page, error) {
	var resp FileResponse
	if err := c.Request(ctx, http.MethodGet, "/files/"+fileKey+"?depth=1", nil, &resp); err != nil {
		return nil, fmt.Errorf("get pages of file %s: %w", fileKey, err)
	}
	if resp.Document.Children == nil {
		return []models.Page{}, nil
	}
	return resp.Document.Children, nil
}

// Verify that *Client implements API at compile time
var _ API = (*Client)(nil)
