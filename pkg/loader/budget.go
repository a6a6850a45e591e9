package loader

import "github.com/entrhq/scout/pkg/types"

const (
	// DefaultTextBudget is the character cap applied to extracted text.
	// Characters are a deliberate stand-in for tokens (roughly four
	// characters per token) so worst-case prompt size stays bounded
	// without running a tokenizer on every load.
	DefaultTextBudget = 100000

	// DefaultLinkCap is the maximum number of links surfaced to the model
	// in a single prompt.
	DefaultLinkCap = 50
)

// Truncate returns at most maxChars bytes of text. It counts bytes, not
// tokens, matching the budget the rest of the system is sized against.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars]
}

// LimitAnchors returns a prefix of the ordered anchor list. Entries beyond
// the cap are invisible to the model until a fresh load surfaces them
// differently.
func LimitAnchors(anchors []types.Anchor, max int) []types.Anchor {
	if max <= 0 {
		return nil
	}
	if len(anchors) <= max {
		return anchors
	}
	return anchors[:max]
}
