package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketing-ops/config"

	"golang.org/x/oauth2"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100

	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

var ErrMissingCredentials = errors.New("social access token or account id is empty")

// Post is a published post with its engagement counters.
type Post struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Message   string    `json:"message"`
	Permalink string    `json:"permalink,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
}

// Client reads posts from the Graph API with a bearer token.
type Client struct {
	baseURL    string
	version    string
	accountID  string
	fields     string
	httpClient *http.Client
}

func NewClient(ctx context.Context, cfg config.SocialConfig, base *http.Client) (*Client, error) {
	if cfg.AccessToken == "" || cfg.AccountID == "" {
		return nil, ErrMissingCredentials
	}

	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.AccessToken,
		TokenType:   "Bearer",
	}))
	if base != nil {
		httpClient.Timeout = base.Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		version:    cfg.APIVersion,
		accountID:  cfg.AccountID,
		fields:     cfg.Fields,
		httpClient: httpClient,
	}, nil
}

func (c *Client) AccountID() string {
	return c.accountID
}

type summaryCount struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

type graphPost struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	CreatedTime  string `json:"created_time"`
	PermalinkURL string `json:"permalink_url"`

	// instagram media fields
	Caption       string `json:"caption"`
	Timestamp     string `json:"timestamp"`
	Permalink     string `json:"permalink"`
	LikeCount     *int   `json:"like_count"`
	CommentsCount *int   `json:"comments_count"`

	Reactions *summaryCount `json:"reactions"`
	Likes     *summaryCount `json:"likes"`
	Comments  *summaryCount `json:"comments"`
	Shares    *struct {
		Count int `json:"count"`
	} `json:"shares"`
}

type graphResponse struct {
	Data  []graphPost `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

const graphTimeLayout = "2006-01-02T15:04:05-0700"

// ListPosts returns up to limit recent posts of the configured account.
func (c *Client) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	limit = ClampLimit(limit)

	q := url.Values{}
	if c.fields != "" {
		q.Set("fields", c.fields)
	}
	q.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/%s/%s/posts?%s", c.baseURL, c.version, url.PathEscape(c.accountID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out graphResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("graph api error (%d): %s", resp.StatusCode, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph api error (%d)", resp.StatusCode)
	}

	posts := make([]Post, 0, len(out.Data))
	for _, gp := range out.Data {
		posts = append(posts, gp.toPost())
	}
	return posts, nil
}

func (gp graphPost) toPost() Post {
	p := Post{ID: gp.ID, Platform: PlatformFacebook}

	if gp.Caption != "" || gp.LikeCount != nil || gp.Timestamp != "" {
		p.Platform = PlatformInstagram
		p.Message = gp.Caption
		p.Permalink = gp.Permalink
		p.CreatedAt = parseGraphTime(gp.Timestamp)
		if gp.LikeCount != nil {
			p.Likes = *gp.LikeCount
		}
		if gp.CommentsCount != nil {
			p.Comments = *gp.CommentsCount
		}
		return p
	}

	p.Message = gp.Message
	p.Permalink = gp.PermalinkURL
	p.CreatedAt = parseGraphTime(gp.CreatedTime)
	switch {
	case gp.Reactions != nil:
		p.Likes = gp.Reactions.Summary.TotalCount
	case gp.Likes != nil:
		p.Likes = gp.Likes.Summary.TotalCount
	}
	if gp.Comments != nil {
		p.Comments = gp.Comments.Summary.TotalCount
	}
	if gp.Shares != nil {
		p.Shares = gp.Shares.Count
	}
	return p
}

func parseGraphTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(graphTimeLayout, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// ClampLimit keeps limit within 1..MaxLimit, defaulting to DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
