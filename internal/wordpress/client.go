// Package wordpress is a minimal client for the WordPress REST API:
// post CRUD, media upload and taxonomy terms, authenticated with an
// application password.
package wordpress

import (
	"bytes"
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
)

// ErrBlockedOrigin marks network failures that look like the site (or a
// proxy in front of it) refusing the connection rather than a plain
// outage. The wrapped message tells the operator what to check.
var ErrBlockedOrigin = errors.New("wordpress site refused the connection")

// APIError is a non-2xx response from the REST API.
type APIError struct {
	Status  int    // HTTP status
	Code    string // WordPress error code, e.g. rest_post_invalid_id
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

// Client talks to one WordPress site.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	httpClient  *http.Client
}

func NewClient(siteURL, username, appPassword string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(siteURL, "/"),
		username:    username,
		appPassword: appPassword,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Rendered is the {rendered: "..."} wrapper the API uses on read.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a post as returned by the API.
type Post struct {
	ID            int      `json:"id"`
	Date          string   `json:"date"`
	Slug          string   `json:"slug"`
	Status        string   `json:"status"`
	Link          string   `json:"link"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Excerpt       Rendered `json:"excerpt"`
	Categories    []int    `json:"categories"`
	Tags          []int    `json:"tags"`
	FeaturedMedia int      `json:"featured_media"`
}

// NewPost is the write-side payload for creating or updating a post.
// Zero values are omitted so partial updates stay partial.
type NewPost struct {
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
	Excerpt       string `json:"excerpt,omitempty"`
	Slug          string `json:"slug,omitempty"`
	Status        string `json:"status,omitempty"`
	Categories    []int  `json:"categories,omitempty"`
	Tags          []int  `json:"tags,omitempty"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

// Media is an uploaded media item.
type Media struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	Title     Rendered `json:"title"`
	AltText   string   `json:"alt_text"`
}

// Term is a taxonomy term (category or tag).
type Term struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// ListOptions narrows a post listing.
type ListOptions struct {
	Page    int
	PerPage int
	Search  string
	Status  string
}

// Pagination carries the listing totals the API reports in headers.
type Pagination struct {
	Total      int // X-WP-Total
	TotalPages int // X-WP-TotalPages
}

// ListPosts lists posts of the given type ("posts", "pages" or a custom
// type's rest base).
func (c *Client) ListPosts(ctx context.Context, postType string, opts ListOptions) ([]Post, Pagination, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var posts []Post
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(postType)+"?"+query.Encode(), nil, "", &posts)
	if err != nil {
		return nil, Pagination{}, err
	}
	return posts, paginationFrom(resp), nil
}

// GetPost fetches one post by ID.
func (c *Client) GetPost(ctx context.Context, postType string, id int) (*Post, error) {
	var post Post
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.endpoint(postType), id), nil, "", &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a post and returns the stored version.
func (c *Client) CreatePost(ctx context.Context, postType string, post NewPost) (*Post, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("encoding post: %w", err)
	}
	var created Post
	if _, err := c.do(ctx, http.MethodPost, c.endpoint(postType), bytes.NewReader(body), "application/json", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePost applies a partial update to an existing post.
func (c *Client) UpdatePost(ctx context.Context, postType string, id int, post NewPost) (*Post, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("encoding post: %w", err)
	}
	var updated Post
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d", c.endpoint(postType), id), bytes.NewReader(body), "application/json", &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePost removes a post. force skips the trash.
func (c *Client) DeletePost(ctx context.Context, postType string, id int, force bool) error {
	u := fmt.Sprintf("%s/%d?force=%t", c.endpoint(postType), id, force)
	_, err := c.do(ctx, http.MethodDelete, u, nil, "", nil)
	return err
}

// UploadMedia uploads a raw file body to the media library. WordPress
// takes the filename from the Content-Disposition header.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("media"), body)
	if err != nil {
		return nil, fmt.Errorf("building media request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	var media Media
	if _, err := c.send(req, &media); err != nil {
		return nil, err
	}
	return &media, nil
}

// ListTerms lists terms of a taxonomy ("categories" or "tags"),
// optionally filtered by search.
func (c *Client) ListTerms(ctx context.Context, taxonomy, search string) ([]Term, error) {
	u := c.endpoint(taxonomy) + "?per_page=100"
	if search != "" {
		u += "&search=" + url.QueryEscape(search)
	}
	var terms []Term
	if _, err := c.do(ctx, http.MethodGet, u, nil, "", &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// CreateTerm creates a taxonomy term by name.
func (c *Client) CreateTerm(ctx context.Context, taxonomy, name string) (*Term, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("encoding term: %w", err)
	}
	var term Term
	if _, err := c.do(ctx, http.MethodPost, c.endpoint(taxonomy), bytes.NewReader(body), "application/json", &term); err != nil {
		return nil, err
	}
	return &term, nil
}

// EnsureTerm resolves a term by name, creating it when absent. Matching
// is case-insensitive on the term name.
func (c *Client) EnsureTerm(ctx context.Context, taxonomy, name string) (*Term, error) {
	terms, err := c.ListTerms(ctx, taxonomy, name)
	if err != nil {
		return nil, err
	}
	for i, term := range terms {
		if strings.EqualFold(term.Name, name) {
			return &terms[i], nil
		}
	}
	return c.CreateTerm(ctx, taxonomy, name)
}

func (c *Client) endpoint(restBase string) string {
	return c.baseURL + "/wp-json/wp/v2/" + restBase
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, out any) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiErrorFrom(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp, nil
}

// apiErrorFrom decodes the standard WordPress error envelope; a body
// that is not JSON still yields a usable APIError.
func apiErrorFrom(status int, body []byte) error {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Code: envelope.Code, Message: envelope.Message}
}

// classifyTransportError separates "the site blocked us" failures from
// ordinary network errors, since they need different operator action.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	for _, marker := range []string{"tls:", "certificate", "handshake", "connection refused", "connection reset"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: verify the site URL and that the REST API accepts requests from this network: %v",
				ErrBlockedOrigin, err)
		}
	}
	return fmt.Errorf("wordpress request failed: %w", err)
}

func paginationFrom(resp *http.Response) Pagination {
	total, _ := strconv.Atoi(resp.Header.Get("X-WP-Total"))
	pages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
	return Pagination{Total: total, TotalPages: pages}
}
