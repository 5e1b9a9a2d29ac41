// Package wordpress posts finished documents to a WordPress site via the
// REST API, authenticated with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

var _ driven.Publisher = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultStatus  = "draft"
)

// Config holds configuration for the WordPress client.
type Config struct {
	// SiteURL is the site root, e.g. https://example.com (required).
	SiteURL string

	// Username is the WordPress account name (required).
	Username string

	// AppPassword is an application password for the account (required).
	AppPassword string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client publishes posts through /wp-json/wp/v2/posts.
type Client struct {
	client  *http.Client
	siteURL string
	user    string
	pass    string
}

// createPostRequest is the WP REST API post payload.
type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// createPostResponse is the subset of the WP REST API response we use.
type createPostResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// NewClient creates a WordPress publisher.
func NewClient(cfg Config) (*Client, error) {
	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("%w: wordpress site URL is required", domain.ErrConfigInvalid)
	}
	if cfg.Username == "" || cfg.AppPassword == "" {
		return nil, fmt.Errorf("%w: wordpress username and application password are required", domain.ErrConfigInvalid)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		siteURL: strings.TrimRight(cfg.SiteURL, "/"),
		user:    cfg.Username,
		pass:    cfg.AppPassword,
	}, nil
}

// Publish creates a post and returns its id and public link.
func (c *Client) Publish(ctx context.Context, post driven.Post) (*driven.PublishResult, error) {
	if strings.TrimSpace(post.Title) == "" {
		return nil, fmt.Errorf("%w: post title is required", domain.ErrInvalidInput)
	}
	if post.Status == "" {
		post.Status = DefaultStatus
	}

	jsonBody, err := json.Marshal(createPostRequest{
		Title:   post.Title,
		Content: post.Content,
		Status:  post.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.siteURL+"/wp-json/wp/v2/posts",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordpress status %d: %s", resp.StatusCode, string(body))
	}

	var created createPostResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &driven.PublishResult{ID: created.ID, Link: created.Link}, nil
}
