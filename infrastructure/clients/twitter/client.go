package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"post-radar/domain/model"
	"post-radar/domain/repository"
	"post-radar/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.postradar.dev"

// Client talks to the live upstream post API using bearer authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL, bearerToken string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearerToken})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 15 * time.Second
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

var _ repository.ISource = (*Client)(nil)

func (c *Client) FetchRecentPosts(ctx context.Context, accountHandle string, limit int) ([]model.Post, error) {
	values, err := query.Values(listOptions{Handle: accountHandle, Limit: limit})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/posts?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", repository.ErrAccountNotFound, accountHandle)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", repository.ErrRateLimited, accountHandle)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", repository.ErrForbidden, accountHandle)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("source: decode response: %w", err)
	}

	posts := make([]model.Post, 0, len(payload.Posts))
	for _, raw := range payload.Posts {
		post, err := toModel(raw)
		if err != nil {
			// Skip single malformed items instead of failing the account.
			logger.GetLogger().WithField("account", accountHandle).WithField("error", err).Warn("skipping malformed post item")
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}
