// Package tokenizer provides client-side token counting for context
// accounting. Counts are estimates based on the cl100k_base encoding and
// may differ slightly from what a given provider reports.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/scout/pkg/types"
)

const (
	// encodingName is the tiktoken encoding used for counting.
	encodingName = "cl100k_base"

	// tokensPerMessage accounts for the per-message framing the chat
	// format adds around role and content.
	tokensPerMessage = 3

	// tokensPerReply accounts for the assistant reply priming tokens.
	tokensPerReply = 3
)

// Tokenizer counts tokens in text and message histories.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer using the cl100k_base encoding.
//
// Initialization downloads the encoding table on first use and can fail
// offline; callers should treat a nil tokenizer as "fall back to character
// estimates" rather than a hard error.
func New() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}

	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the number of tokens in the given text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens returns the number of tokens a message history will
// occupy in a chat completion request, including per-message framing and
// reply priming.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	if len(messages) == 0 {
		return 0
	}

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += t.CountTokens(string(msg.Role))
		total += t.CountTokens(msg.Content)
	}
	total += tokensPerReply

	return total
}

// EstimateTokens approximates a token count from text length without an
// encoding, using the rough ratio of one token per four characters.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateMessagesTokens approximates the token count of a message history
// without an encoding.
func EstimateMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += (len(msg.Content) + len(string(msg.Role)) + 12) / 4
	}
	return total
}
