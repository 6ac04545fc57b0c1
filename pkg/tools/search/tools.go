package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
)

// Tools returns the search tools backed by client.
func Tools(client *Client) []tools.Tool {
	return []tools.Tool{
		NewWebSearchTool(client),
		NewSearchNewsTool(client),
		NewSearchCodeTool(client),
	}
}

func render(result Result) (string, map[string]interface{}, error) {
	out, err := tools.RenderJSON(result)
	if err != nil {
		return "", nil, err
	}
	return out, map[string]interface{}{
		"success":       result.Success,
		"total_results": result.TotalResults,
	}, nil
}

var localeProperties = map[string]interface{}{
	"country": map[string]interface{}{
		"type":        "string",
		"description": "Two-letter country code for localized results",
	},
	"language": map[string]interface{}{
		"type":        "string",
		"description": "Two-letter language code for results",
	},
}

func withLocale(props map[string]interface{}) map[string]interface{} {
	for k, v := range localeProperties {
		props[k] = v
	}
	return props
}

// WebSearchTool exposes Client.Search.
type WebSearchTool struct {
	client *Client
}

// NewWebSearchTool creates a new web search tool.
func NewWebSearchTool(client *Client) *WebSearchTool {
	return &WebSearchTool{client: client}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web with Google Search. Returns web pages, news, images or places depending on result_type."
}

func (t *WebSearchTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		withLocale(map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
			"result_type": map[string]interface{}{
				"type":        "string",
				"description": "One of web, news, images, places (default: web)",
			},
			"auto_correct": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to auto-correct spelling mistakes (default: true)",
			},
		}),
		[]string{"query"},
	)
}

// WebSearchInput represents the parameters for web_search.
type WebSearchInput struct {
	XMLName     xml.Name `xml:"arguments"`
	Query       string   `xml:"query"`
	ResultType  string   `xml:"result_type"`
	AutoCorrect string   `xml:"auto_correct"`
	Country     string   `xml:"country"`
	Language    string   `xml:"language"`
}

func (t *WebSearchTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input WebSearchInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", nil, fmt.Errorf("query is required")
	}

	req := Request{
		Query:      input.Query,
		ResultType: input.ResultType,
		Country:    strings.TrimSpace(input.Country),
		Language:   strings.TrimSpace(input.Language),
	}
	if v := strings.TrimSpace(input.AutoCorrect); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", nil, fmt.Errorf("invalid auto_correct %q: must be true or false", v)
		}
		req.AutoCorrect = &b
	}
	return render(t.client.Search(ctx, req))
}

func (t *WebSearchTool) IsLoopBreaking() bool { return false }

// SearchNewsTool exposes Client.SearchNews.
type SearchNewsTool struct {
	client *Client
}

// NewSearchNewsTool creates a new news search tool.
func NewSearchNewsTool(client *Client) *SearchNewsTool {
	return &SearchNewsTool{client: client}
}

func (t *SearchNewsTool) Name() string { return "search_news" }

func (t *SearchNewsTool) Description() string {
	return "Search recent news articles, optionally only those published in the last N hours."
}

func (t *SearchNewsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		withLocale(map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
			"hours_ago": map[string]interface{}{
				"type":        "integer",
				"description": "Only return articles from the last N hours",
			},
		}),
		[]string{"query"},
	)
}

// SearchNewsInput represents the parameters for search_news.
type SearchNewsInput struct {
	XMLName  xml.Name `xml:"arguments"`
	Query    string   `xml:"query"`
	HoursAgo string   `xml:"hours_ago"`
	Country  string   `xml:"country"`
	Language string   `xml:"language"`
}

func (t *SearchNewsTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SearchNewsInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", nil, fmt.Errorf("query is required")
	}

	req := NewsRequest{
		Query:    input.Query,
		Country:  strings.TrimSpace(input.Country),
		Language: strings.TrimSpace(input.Language),
	}
	if v := strings.TrimSpace(input.HoursAgo); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("invalid hours_ago %q: must be a non-negative integer", v)
		}
		req.HoursAgo = n
	}
	return render(t.client.SearchNews(ctx, req))
}

func (t *SearchNewsTool) IsLoopBreaking() bool { return false }

// SearchCodeTool exposes Client.SearchCode.
type SearchCodeTool struct {
	client *Client
}

// NewSearchCodeTool creates a new code search tool.
func NewSearchCodeTool(client *Client) *SearchCodeTool {
	return &SearchCodeTool{client: client}
}

func (t *SearchCodeTool) Name() string { return "search_code" }

func (t *SearchCodeTool) Description() string {
	return "Search developer sites (Stack Overflow, GitHub, dev.to, Medium by default) for programming help."
}

func (t *SearchCodeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
			"sites": map[string]interface{}{
				"type":        "string",
				"description": "Comma-separated domains to search, e.g. stackoverflow.com,github.com",
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "Programming language to focus on",
			},
		},
		[]string{"query"},
	)
}

// SearchCodeInput represents the parameters for search_code.
type SearchCodeInput struct {
	XMLName  xml.Name `xml:"arguments"`
	Query    string   `xml:"query"`
	Sites    string   `xml:"sites"`
	Language string   `xml:"language"`
}

func (t *SearchCodeTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SearchCodeInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", nil, fmt.Errorf("query is required")
	}

	var sites []string
	if input.Sites != "" {
		sites = strings.Split(input.Sites, ",")
	}
	return render(t.client.SearchCode(ctx, CodeRequest{
		Query:    input.Query,
		Sites:    sites,
		Language: strings.TrimSpace(input.Language),
	}))
}

func (t *SearchCodeTool) IsLoopBreaking() bool { return false }
