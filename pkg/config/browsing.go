package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

const (
	// SectionIDBrowsing is the identifier for the browsing settings section
	SectionIDBrowsing = "browsing"
)

// BrowsingSection manages page loading and navigation scope settings.
//
// Zero values mean "use the library default": a TextBudget of 0 leaves the
// loader's budget in place, an empty UserAgent keeps the loader's browser
// string, and empty pattern lists leave navigation unrestricted.
type BrowsingSection struct {
	TextBudget      int      // max characters of source text kept per page
	MaxLinks        int      // max links listed in the system prompt
	FetchTimeout    int      // seconds per HTTP fetch
	UserAgent       string   // User-Agent header for fetches
	AllowedPatterns []string // glob patterns navigation targets must match
	DeniedPatterns  []string // glob patterns navigation targets must not match
	mu              sync.RWMutex
}

// NewBrowsingSection creates a new browsing section with default settings.
func NewBrowsingSection() *BrowsingSection {
	return &BrowsingSection{
		TextBudget:      0,
		MaxLinks:        0,
		FetchTimeout:    0,
		UserAgent:       "",
		AllowedPatterns: nil,
		DeniedPatterns:  nil,
	}
}

// ID returns the section identifier.
func (s *BrowsingSection) ID() string {
	return SectionIDBrowsing
}

// Title returns the section title.
func (s *BrowsingSection) Title() string {
	return "Browsing Settings"
}

// Description returns the section description.
func (s *BrowsingSection) Description() string {
	return "Configure page loading limits, the fetch User-Agent, and the glob patterns that scope model-driven navigation."
}

// Data returns the current configuration data.
func (s *BrowsingSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make([]any, len(s.AllowedPatterns))
	for i, p := range s.AllowedPatterns {
		allowed[i] = p
	}
	denied := make([]any, len(s.DeniedPatterns))
	for i, p := range s.DeniedPatterns {
		denied[i] = p
	}

	return map[string]any{
		"text_budget":      s.TextBudget,
		"max_links":        s.MaxLinks,
		"fetch_timeout":    s.FetchTimeout,
		"user_agent":       s.UserAgent,
		"allowed_patterns": allowed,
		"denied_patterns":  denied,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowsingSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if budget, ok := asInt(data["text_budget"]); ok {
		s.TextBudget = budget
	}

	if maxLinks, ok := asInt(data["max_links"]); ok {
		s.MaxLinks = maxLinks
	}

	if timeout, ok := asInt(data["fetch_timeout"]); ok {
		s.FetchTimeout = timeout
	}

	if userAgent, ok := data["user_agent"].(string); ok {
		s.UserAgent = userAgent
	}

	if raw, ok := data["allowed_patterns"]; ok {
		patterns, err := asPatternList("allowed_patterns", raw)
		if err != nil {
			return err
		}
		s.AllowedPatterns = patterns
	}

	if raw, ok := data["denied_patterns"]; ok {
		patterns, err := asPatternList("denied_patterns", raw)
		if err != nil {
			return err
		}
		s.DeniedPatterns = patterns
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowsingSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.TextBudget < 0 {
		return fmt.Errorf("text_budget cannot be negative")
	}
	if s.MaxLinks < 0 {
		return fmt.Errorf("max_links cannot be negative")
	}
	if s.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout cannot be negative")
	}

	for i, pattern := range s.AllowedPatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("allowed pattern at index %d is empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("allowed pattern %q: %w", pattern, err)
		}
	}
	for i, pattern := range s.DeniedPatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("denied pattern at index %d is empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("denied pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *BrowsingSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TextBudget = 0
	s.MaxLinks = 0
	s.FetchTimeout = 0
	s.UserAgent = ""
	s.AllowedPatterns = nil
	s.DeniedPatterns = nil
}

// GetTextBudget returns the configured text budget. Zero means use the
// loader default.
func (s *BrowsingSection) GetTextBudget() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TextBudget
}

// GetMaxLinks returns the configured link cap. Zero means use the prompt
// builder default.
func (s *BrowsingSection) GetMaxLinks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxLinks
}

// GetFetchTimeout returns the configured fetch timeout in seconds. Zero
// means use the fetcher default.
func (s *BrowsingSection) GetFetchTimeout() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FetchTimeout
}

// GetUserAgent returns the configured User-Agent string.
func (s *BrowsingSection) GetUserAgent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserAgent
}

// GetAllowedPatterns returns a copy of the allowed navigation patterns.
func (s *BrowsingSection) GetAllowedPatterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.AllowedPatterns...)
}

// GetDeniedPatterns returns a copy of the denied navigation patterns.
func (s *BrowsingSection) GetDeniedPatterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.DeniedPatterns...)
}

// AddAllowedPattern appends a pattern to the allowed list.
func (s *BrowsingSection) AddAllowedPattern(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if _, err := glob.Compile(pattern); err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	for _, p := range s.AllowedPatterns {
		if p == pattern {
			return fmt.Errorf("pattern '%s' already exists", pattern)
		}
	}

	s.AllowedPatterns = append(s.AllowedPatterns, pattern)
	return nil
}

// AddDeniedPattern appends a pattern to the denied list.
func (s *BrowsingSection) AddDeniedPattern(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if _, err := glob.Compile(pattern); err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	for _, p := range s.DeniedPatterns {
		if p == pattern {
			return fmt.Errorf("pattern '%s' already exists", pattern)
		}
	}

	s.DeniedPatterns = append(s.DeniedPatterns, pattern)
	return nil
}

// RemoveAllowedPattern removes a pattern from the allowed list by index.
func (s *BrowsingSection) RemoveAllowedPattern(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.AllowedPatterns) {
		return fmt.Errorf("invalid pattern index: %d", index)
	}
	s.AllowedPatterns = append(s.AllowedPatterns[:index], s.AllowedPatterns[index+1:]...)
	return nil
}

// RemoveDeniedPattern removes a pattern from the denied list by index.
func (s *BrowsingSection) RemoveDeniedPattern(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.DeniedPatterns) {
		return fmt.Errorf("invalid pattern index: %d", index)
	}
	s.DeniedPatterns = append(s.DeniedPatterns[:index], s.DeniedPatterns[index+1:]...)
	return nil
}

// asPatternList coerces a JSON-decoded value to a string slice.
func asPatternList(key string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		patterns := make([]string, 0, len(v))
		for i, item := range v {
			pattern, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid %s at index %d: expected string, got %T", key, i, item)
			}
			patterns = append(patterns, pattern)
		}
		return patterns, nil
	default:
		return nil, fmt.Errorf("invalid %s type: expected list, got %T", key, raw)
	}
}
