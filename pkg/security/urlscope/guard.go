// Package urlscope provides security mechanisms for bounding autonomous
// navigation. A model-emitted directive can name any URL; the guard decides
// which targets the agent may actually fetch.
package urlscope

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// ErrScopeDenied is returned when a navigation target falls outside the
// configured scope.
var ErrScopeDenied = errors.New("url outside navigation scope")

// Guard validates navigation targets against allow and deny glob patterns.
// Patterns match the URL's host and host+path forms, so both
// "*.example.com" and "example.com/docs/*" work. Denied patterns take
// precedence; an empty allow list admits every host not explicitly denied.
type Guard struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewGuard creates a guard from allow and deny pattern lists.
func NewGuard(allowed, denied []string) (*Guard, error) {
	g := &Guard{}

	for _, pattern := range allowed {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		g.allowedPatterns = append(g.allowedPatterns, compiled)
	}

	for _, pattern := range denied {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		g.deniedPatterns = append(g.deniedPatterns, compiled)
	}

	return g, nil
}

// ValidateURL checks whether the URL is a permissible navigation target.
//
// Returns an error if:
// - The URL does not parse
// - The scheme is not http or https
// - The URL matches a denied pattern
// - Allow patterns are configured and none match
func (g *Guard) ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid navigation target '%s': %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' is not navigable", ErrScopeDenied, u.Scheme)
	}

	host := strings.ToLower(u.Host)
	hostPath := host + u.Path

	for _, pattern := range g.deniedPatterns {
		if pattern.Match(host) || pattern.Match(hostPath) {
			return fmt.Errorf("%w: '%s' matches a denied pattern", ErrScopeDenied, rawURL)
		}
	}

	if len(g.allowedPatterns) == 0 {
		return nil
	}

	for _, pattern := range g.allowedPatterns {
		if pattern.Match(host) || pattern.Match(hostPath) {
			return nil
		}
	}

	return fmt.Errorf("%w: '%s' matches no allowed pattern", ErrScopeDenied, rawURL)
}

// IsAllowed reports whether the URL is a permissible navigation target.
func (g *Guard) IsAllowed(rawURL string) bool {
	return g.ValidateURL(rawURL) == nil
}
