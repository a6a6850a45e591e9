package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/scout/pkg/agent/memory"
	"github.com/entrhq/scout/pkg/types"
)

// ErrNoResource is returned when a conversation turn arrives before any
// resource has been loaded.
var ErrNoResource = errors.New("no resource loaded")

// NavigationNoticeFormat is the synthetic assistant turn appended after a
// successful navigation so the transcript explains the source change
// without carrying the raw directive JSON.
const NavigationNoticeFormat = "✅ **Navigation Successful!** I have loaded the new page: %s"

// Session owns the single coherent unit of agent state: the current
// resource and the conversation about it. All mutation goes through its
// methods under one lock; a load either fully replaces the resource or
// leaves it untouched.
//
// History policy: a manual load starts a fresh conversation, so history is
// cleared. A navigation continues the research session, so history is
// preserved and a notice turn records the source change.
type Session struct {
	mu       sync.RWMutex
	resource *types.Resource
	memory   memory.Memory
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		memory: memory.NewConversationMemory(),
	}
}

// Resource returns the currently loaded resource, or nil before the first
// load.
func (s *Session) Resource() *types.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resource
}

// HasResource reports whether a resource is loaded.
func (s *Session) HasResource() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resource != nil
}

// History returns a copy of the conversation history.
func (s *Session) History() []*types.Message {
	return s.memory.GetAll()
}

// HistoryLen returns the number of stored turns.
func (s *Session) HistoryLen() int {
	return s.memory.Len()
}

// AddTurn appends a conversational turn to the history.
func (s *Session) AddTurn(msg *types.Message) {
	s.memory.Add(msg)
}

// LoadManual replaces the resource with an operator-initiated load and
// clears the conversation history.
func (s *Session) LoadManual(resource *types.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resource = resource
	s.memory.Clear()
}

// LoadViaNavigation replaces the resource after a model-driven navigation.
// History is preserved and a notice turn is appended so the transcript
// remains self-explanatory.
func (s *Session) LoadViaNavigation(resource *types.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resource = resource
	s.memory.Add(types.NewAssistantMessage(fmt.Sprintf(NavigationNoticeFormat, resource.SourceID)))
}

// Reset discards the resource and the conversation history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resource = nil
	s.memory.Clear()
}
