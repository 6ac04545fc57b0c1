// Package search provides web, news and code search through the Serper
// Google Search API.
//
// Like the media tools, operations report failures inside their result
// instead of returning Go errors.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/agentkit/pkg/config"
	"github.com/entrhq/agentkit/pkg/logging"
)

const maxResponseBytes = 5 * 1024 * 1024

// Result types accepted by Search.
const (
	TypeWeb    = "web"
	TypeNews   = "news"
	TypeImages = "images"
	TypePlaces = "places"
)

// Client performs searches with one set of settings.
type Client struct {
	settings config.SearchSettings
	http     *http.Client
	now      func() time.Time
	log      *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout takes precedence
// over the configured one.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithClock replaces the clock used for news age filtering.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient creates a client from settings. A missing API key is not an
// error here; every search then fails with a result saying so.
func NewClient(settings config.SearchSettings, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		http:     &http.Client{Timeout: settings.Timeout},
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request configures Search.
type Request struct {
	Query      string
	ResultType string
	Country    string
	Language   string
	// AutoCorrect defaults to true when nil.
	AutoCorrect *bool
}

// Hit is one search result. Which fields are set depends on the result type.
type Hit struct {
	Title     string  `json:"title"`
	Link      string  `json:"link,omitempty"`
	Snippet   string  `json:"snippet,omitempty"`
	Position  int     `json:"position,omitempty"`
	Domain    string  `json:"domain,omitempty"`
	Date      string  `json:"date,omitempty"`
	Source    string  `json:"source,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
	Size      string  `json:"size,omitempty"`
	Address   string  `json:"address,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Reviews   int     `json:"reviews,omitempty"`
	Type      string  `json:"type,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Website   string  `json:"website,omitempty"`
}

// Result is the outcome of a search.
type Result struct {
	Success      bool   `json:"success"`
	Query        string `json:"query,omitempty"`
	ResultType   string `json:"result_type,omitempty"`
	Results      []Hit  `json:"results,omitempty"`
	TotalResults int    `json:"total_results"`
	Error        string `json:"error,omitempty"`
}

func failure(format string, args ...interface{}) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// serperHit covers the fields of every Serper result list.
type serperHit struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Snippet     string  `json:"snippet"`
	Position    int     `json:"position"`
	Domain      string  `json:"domain"`
	Date        string  `json:"date"`
	Source      string  `json:"source"`
	ImageURL    string  `json:"imageUrl"`
	SourceURL   string  `json:"sourceUrl"`
	ImageWidth  int     `json:"imageWidth"`
	ImageHeight int     `json:"imageHeight"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	Reviews     int     `json:"reviews"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	PhoneNumber string  `json:"phoneNumber"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website"`
}

type serperResponse struct {
	Organic []serperHit `json:"organic"`
	News    []serperHit `json:"news"`
	Images  []serperHit `json:"images"`
	Places  []serperHit `json:"places"`
}

// Search runs one query against the endpoint for req.ResultType
// (web by default).
func (c *Client) Search(ctx context.Context, req Request) Result {
	if strings.TrimSpace(c.settings.APIKey) == "" {
		return failure("search API key is not configured (set search.api_key or SERPER_API_KEY)")
	}
	if strings.TrimSpace(req.Query) == "" {
		return failure("query is required")
	}

	resultType := strings.ToLower(strings.TrimSpace(req.ResultType))
	if resultType == "" {
		resultType = TypeWeb
	}
	endpoint := resultType
	switch resultType {
	case TypeWeb:
		endpoint = "search"
	case TypeNews, TypeImages, TypePlaces:
	default:
		return failure("invalid result_type %q: must be one of web, news, images, places", req.ResultType)
	}

	payload := map[string]interface{}{
		"q":           req.Query,
		"num":         c.settings.ResultLimit,
		"autocorrect": req.AutoCorrect == nil || *req.AutoCorrect,
	}
	if req.Country != "" {
		payload["gl"] = strings.ToUpper(req.Country)
	}
	if req.Language != "" {
		payload["hl"] = strings.ToLower(req.Language)
	}

	var resp serperResponse
	if err := c.post(ctx, endpoint, payload, &resp); err != nil {
		c.log.Warnf("%s search failed: %v", resultType, err)
		return failure("search request failed: %v", err)
	}

	var raw []serperHit
	switch resultType {
	case TypeWeb:
		raw = resp.Organic
	case TypeNews:
		raw = resp.News
	case TypeImages:
		raw = resp.Images
	case TypePlaces:
		raw = resp.Places
	}

	hits := make([]Hit, 0, len(raw))
	for _, h := range raw {
		hits = append(hits, convert(resultType, h))
	}
	c.log.Debugf("%s search for %q returned %d results", resultType, req.Query, len(hits))

	return Result{
		Success:      true,
		Query:        req.Query,
		ResultType:   resultType,
		Results:      hits,
		TotalResults: len(hits),
	}
}

// newsDateLayout is the absolute date format news results are filtered on.
const newsDateLayout = "2006-01-02 15:04:05"

// NewsRequest configures SearchNews.
type NewsRequest struct {
	Query    string
	HoursAgo int
	Country  string
	Language string
}

// SearchNews searches news articles. With HoursAgo > 0, articles older
// than that many hours are dropped, as are articles whose date cannot be
// parsed.
func (c *Client) SearchNews(ctx context.Context, req NewsRequest) Result {
	result := c.Search(ctx, Request{
		Query:      req.Query,
		ResultType: TypeNews,
		Country:    req.Country,
		Language:   req.Language,
	})
	if !result.Success || req.HoursAgo <= 0 {
		return result
	}

	now := c.now()
	window := time.Duration(req.HoursAgo) * time.Hour
	kept := make([]Hit, 0, len(result.Results))
	for _, hit := range result.Results {
		published, ok := parseNewsDate(hit.Date, now)
		if !ok {
			continue
		}
		if now.Sub(published) <= window {
			kept = append(kept, hit)
		}
	}
	result.Results = kept
	result.TotalResults = len(kept)
	return result
}

// parseNewsDate accepts the absolute layout or a relative "N unit(s) ago".
func parseNewsDate(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(newsDateLayout, value, now.Location()); err == nil {
		return t, true
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(value, "%d %s ago", &n, &unit); err != nil {
		return time.Time{}, false
	}
	switch strings.TrimSuffix(unit, "s") {
	case "minute", "min":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	}
	return time.Time{}, false
}

// DefaultCodeSites are searched by SearchCode when no sites are given.
var DefaultCodeSites = []string{"stackoverflow.com", "github.com", "dev.to", "medium.com"}

// CodeRequest configures SearchCode.
type CodeRequest struct {
	Query    string
	Sites    []string
	Language string
}

// SearchCode runs a web search restricted to developer sites.
func (c *Client) SearchCode(ctx context.Context, req CodeRequest) Result {
	if strings.TrimSpace(req.Query) == "" {
		return failure("query is required")
	}
	return c.Search(ctx, Request{Query: codeQuery(req), ResultType: TypeWeb})
}

func codeQuery(req CodeRequest) string {
	sites := req.Sites
	if len(sites) == 0 {
		sites = DefaultCodeSites
	}
	terms := make([]string, 0, len(sites))
	for _, site := range sites {
		if site = strings.TrimSpace(site); site != "" {
			terms = append(terms, "site:"+site)
		}
	}
	query := req.Query
	if len(terms) > 0 {
		query = fmt.Sprintf("%s (%s)", query, strings.Join(terms, " OR "))
	}
	if req.Language != "" {
		query = req.Language + " " + query
	}
	return query
}

func convert(resultType string, h serperHit) Hit {
	switch resultType {
	case TypeNews:
		return Hit{Title: h.Title, Link: h.Link, Snippet: h.Snippet, Date: h.Date, Source: h.Source}
	case TypeImages:
		hit := Hit{Title: h.Title, Link: h.Link, ImageURL: h.ImageURL, SourceURL: h.SourceURL, Source: h.Source}
		if h.ImageWidth > 0 && h.ImageHeight > 0 {
			hit.Size = fmt.Sprintf("%dx%d", h.ImageWidth, h.ImageHeight)
		}
		return hit
	case TypePlaces:
		hit := Hit{
			Title: h.Title, Address: h.Address, Rating: h.Rating, Reviews: h.RatingCount,
			Type: h.Category, Phone: h.PhoneNumber, Website: h.Website,
		}
		if hit.Reviews == 0 {
			hit.Reviews = h.Reviews
		}
		if hit.Type == "" {
			hit.Type = h.Type
		}
		if hit.Phone == "" {
			hit.Phone = h.Phone
		}
		return hit
	default:
		return Hit{Title: h.Title, Link: h.Link, Snippet: h.Snippet, Position: h.Position, Domain: h.Domain}
	}
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimSuffix(c.settings.BaseURL, "/") + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
