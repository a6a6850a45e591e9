// Package memory provides conversation history storage for the agent.
package memory

import (
	"sync"

	"github.com/entrhq/scout/pkg/types"
)

// Memory stores conversation history for an agent session.
type Memory interface {
	// Add appends a message to the history.
	Add(msg *types.Message)

	// GetAll returns a copy of the full history in insertion order.
	GetAll() []*types.Message

	// Clear removes all messages.
	Clear()

	// Len returns the number of stored messages.
	Len() int
}

// ConversationMemory is an in-memory Memory implementation, safe for
// concurrent use.
type ConversationMemory struct {
	mu       sync.RWMutex
	messages []*types.Message
}

// NewConversationMemory creates an empty conversation memory.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		messages: make([]*types.Message, 0),
	}
}

// Add appends a message to the history.
func (m *ConversationMemory) Add(msg *types.Message) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// GetAll returns a copy of the full history in insertion order. The slice
// is the caller's to keep; later Adds do not affect it.
func (m *ConversationMemory) GetAll() []*types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Clear removes all messages.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = m.messages[:0]
}

// Len returns the number of stored messages.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}
