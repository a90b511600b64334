package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "mindcast/pkg/domain-errors"
)

const (
	graphMaxRetries   = 3
	graphInitialDelay = 2 * time.Second

	// graphCodeInvalidToken is the error code the graph API returns for
	// expired or revoked access tokens. Never retried.
	graphCodeInvalidToken = 190
)

// GraphClient is the slice of the Instagram graph API the publisher needs.
type GraphClient interface {
	CreateContainer(ctx context.Context, videoURL, caption string) (string, error)
	ContainerStatus(ctx context.Context, containerID string) (string, error)
	Publish(ctx context.Context, containerID string) (string, error)
}

// InstagramClient talks to the Instagram content publishing endpoints.
type InstagramClient struct {
	baseURL     string
	userID      string
	accessToken string
	client      *http.Client
}

// NewInstagramClient constructs a graph client. baseURL is normally
// https://graph.facebook.com/v21.0.
func NewInstagramClient(baseURL, userID, accessToken string) *InstagramClient {
	return &InstagramClient{
		baseURL:     baseURL,
		userID:      userID,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// CreateContainer registers the video for ingestion and returns the
// container ID. The video URL must be publicly reachable.
func (c *InstagramClient) CreateContainer(ctx context.Context, videoURL, caption string) (string, error) {
	form := url.Values{
		"media_type": {"REELS"},
		"video_url":  {videoURL},
		"caption":    {caption},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/"+c.userID+"/media", form, &out); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create media container: empty container id")
	}
	return out.ID, nil
}

// ContainerStatus returns the ingestion status code for a container.
func (c *InstagramClient) ContainerStatus(ctx context.Context, containerID string) (string, error) {
	var out struct {
		StatusCode string `json:"status_code"`
	}
	if err := c.get(ctx, "/"+containerID+"?fields=status_code", &out); err != nil {
		return "", fmt.Errorf("container status: %w", err)
	}
	return out.StatusCode, nil
}

// Publish flips a finished container live and returns the media ID.
func (c *InstagramClient) Publish(ctx context.Context, containerID string) (string, error) {
	form := url.Values{"creation_id": {containerID}}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/"+c.userID+"/media_publish", form, &out); err != nil {
		return "", fmt.Errorf("publish media: %w", err)
	}
	return out.ID, nil
}

func (c *InstagramClient) post(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		form.Set("access_token", c.accessToken)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, out)
}

func (c *InstagramClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+sep+"access_token="+url.QueryEscape(c.accessToken), nil)
	}, out)
}

func (c *InstagramClient) do(ctx context.Context, build func(context.Context) (*http.Request, error), out any) error {
	var lastErr error
	for attempt := 0; attempt < graphMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * graphInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := build(ctx)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("graph request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var graphErr graphError
			if json.Unmarshal(body, &graphErr) == nil && graphErr.Error.Message != "" {
				if graphErr.Error.Code == graphCodeInvalidToken {
					return domainerrors.New(domainerrors.CodeUnauthorized,
						fmt.Sprintf("instagram access token rejected: %s", graphErr.Error.Message))
				}
				lastErr = fmt.Errorf("graph error (%d, code %d): %s",
					resp.StatusCode, graphErr.Error.Code, graphErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("graph error (%d): %s", resp.StatusCode, string(body))
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return lastErr
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", graphMaxRetries, lastErr)
}
