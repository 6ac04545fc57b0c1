package browser

import (
	"fmt"
	"net/url"
	"strings"
)

// URLPolicy decides which URLs the browser tools may open.
type URLPolicy struct {
	AllowFileURLs  bool
	AllowedDomains []string
	BlockedDomains []string
}

// Check returns a SecurityViolation or InvalidArgument error for rawURL, or
// nil when it may be visited.
func (p URLPolicy) Check(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return newError(InvalidArgument, "check_url", "", fmt.Errorf("url is required"))
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return newError(InvalidArgument, "check_url", "", fmt.Errorf("invalid url %q: %w", rawURL, err))
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "about", "data":
		return nil
	case "file":
		if !p.AllowFileURLs {
			return newError(SecurityViolation, "check_url", "", fmt.Errorf("file:// URLs are not allowed"))
		}
		return nil
	case "":
		return newError(InvalidArgument, "check_url", "", fmt.Errorf("url %q has no scheme", rawURL))
	default:
		return newError(SecurityViolation, "check_url", "", fmt.Errorf("scheme %q is not allowed", u.Scheme))
	}

	host := strings.ToLower(u.Hostname())
	if len(p.AllowedDomains) > 0 && !matchAnyDomain(host, p.AllowedDomains) {
		return newError(SecurityViolation, "check_url", "", fmt.Errorf("domain not in allowed list: %s", host))
	}
	if matchAnyDomain(host, p.BlockedDomains) {
		return newError(SecurityViolation, "check_url", "", fmt.Errorf("domain is blocked: %s", host))
	}
	return nil
}

func matchAnyDomain(host string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchDomain(host, strings.ToLower(strings.TrimSpace(pattern))) {
			return true
		}
	}
	return false
}

// matchDomain supports exact hosts, "*.example.com" and ".example.com";
// the wildcard forms also match the bare domain.
func matchDomain(host, pattern string) bool {
	switch {
	case pattern == "":
		return false
	case host == pattern:
		return true
	case strings.HasPrefix(pattern, "*."):
		pattern = pattern[1:]
	case !strings.HasPrefix(pattern, "."):
		return false
	}
	return strings.HasSuffix(host, pattern) || host == pattern[1:]
}
