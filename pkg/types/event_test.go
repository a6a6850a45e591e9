package types

import (
	"errors"
	"testing"
)

func TestAgentEventType(t *testing.T) {
	tests := []struct {
		eventType AgentEventType
		name      string
		expected  string
	}{
		{
			name:      "message_start",
			eventType: EventTypeMessageStart,
			expected:  "message_start",
		},
		{
			name:      "message_content",
			eventType: EventTypeMessageContent,
			expected:  "message_content",
		},
		{
			name:      "message_end",
			eventType: EventTypeMessageEnd,
			expected:  "message_end",
		},
		{
			name:      "directive_start",
			eventType: EventTypeDirectiveStart,
			expected:  "directive_start",
		},
		{
			name:      "directive_content",
			eventType: EventTypeDirectiveContent,
			expected:  "directive_content",
		},
		{
			name:      "directive_end",
			eventType: EventTypeDirectiveEnd,
			expected:  "directive_end",
		},
		{
			name:      "load_start",
			eventType: EventTypeLoadStart,
			expected:  "load_start",
		},
		{
			name:      "resource_loaded",
			eventType: EventTypeResourceLoaded,
			expected:  "resource_loaded",
		},
		{
			name:      "navigation_start",
			eventType: EventTypeNavigationStart,
			expected:  "navigation_start",
		},
		{
			name:      "navigation_end",
			eventType: EventTypeNavigationEnd,
			expected:  "navigation_end",
		},
		{
			name:      "navigation_failed",
			eventType: EventTypeNavigationFailed,
			expected:  "navigation_failed",
		},
		{
			name:      "api_call_start",
			eventType: EventTypeAPICallStart,
			expected:  "api_call_start",
		},
		{
			name:      "api_call_end",
			eventType: EventTypeAPICallEnd,
			expected:  "api_call_end",
		},
		{
			name:      "update_busy",
			eventType: EventTypeUpdateBusy,
			expected:  "update_busy",
		},
		{
			name:      "turn_end",
			eventType: EventTypeTurnEnd,
			expected:  "turn_end",
		},
		{
			name:      "error",
			eventType: EventTypeError,
			expected:  "error",
		},
		{
			name:      "token_usage",
			eventType: EventTypeTokenUsage,
			expected:  "token_usage",
		},
		{
			name:      "state_change",
			eventType: EventTypeStateChange,
			expected:  "state_change",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.eventType) != tt.expected {
				t.Errorf("EventType = %v, want %v", tt.eventType, tt.expected)
			}
		})
	}
}

func TestNewMessageEvents(t *testing.T) {
	start := NewMessageStartEvent()
	if start.Type != EventTypeMessageStart {
		t.Errorf("MessageStart type = %v, want %v", start.Type, EventTypeMessageStart)
	}

	content := NewMessageContentEvent("The article argues that")
	if content.Type != EventTypeMessageContent {
		t.Errorf("MessageContent type = %v, want %v", content.Type, EventTypeMessageContent)
	}
	if content.Content != "The article argues that" {
		t.Errorf("MessageContent content = %v, want 'The article argues that'", content.Content)
	}

	end := NewMessageEndEvent()
	if end.Type != EventTypeMessageEnd {
		t.Errorf("MessageEnd type = %v, want %v", end.Type, EventTypeMessageEnd)
	}
}

func TestNewDirectiveEvents(t *testing.T) {
	start := NewDirectiveStartEvent()
	if start.Type != EventTypeDirectiveStart {
		t.Errorf("DirectiveStart type = %v, want %v", start.Type, EventTypeDirectiveStart)
	}

	content := NewDirectiveContentEvent(`{"action": "navigate"`)
	if content.Type != EventTypeDirectiveContent {
		t.Errorf("DirectiveContent type = %v, want %v", content.Type, EventTypeDirectiveContent)
	}
	if content.Content != `{"action": "navigate"` {
		t.Errorf("DirectiveContent content = %v", content.Content)
	}

	end := NewDirectiveEndEvent()
	if end.Type != EventTypeDirectiveEnd {
		t.Errorf("DirectiveEnd type = %v, want %v", end.Type, EventTypeDirectiveEnd)
	}
}

func TestNewLoadEvents(t *testing.T) {
	start := NewLoadStartEvent("https://example.com/article")
	if start.Type != EventTypeLoadStart {
		t.Errorf("LoadStart type = %v, want %v", start.Type, EventTypeLoadStart)
	}
	if start.Metadata["source_id"] != "https://example.com/article" {
		t.Error("LoadStart source_id metadata not set")
	}

	loaded := NewResourceLoadedEvent(&ResourceInfo{
		SourceID:      "https://example.com/article",
		Title:         "Example Article",
		TextBytes:     2048,
		LinkCount:     12,
		FileCount:     2,
		Truncated:     true,
		ViaNavigation: true,
	})
	if loaded.Type != EventTypeResourceLoaded {
		t.Errorf("ResourceLoaded type = %v, want %v", loaded.Type, EventTypeResourceLoaded)
	}
	if loaded.Resource == nil {
		t.Fatal("Resource not set")
	}
	if loaded.Resource.Title != "Example Article" {
		t.Errorf("Resource title = %v, want 'Example Article'", loaded.Resource.Title)
	}
	if !loaded.Resource.ViaNavigation {
		t.Error("ViaNavigation should be set")
	}
}

func TestNewNavigationEvents(t *testing.T) {
	start := NewNavigationStartEvent("https://example.com/next")
	if start.Type != EventTypeNavigationStart {
		t.Errorf("NavigationStart type = %v, want %v", start.Type, EventTypeNavigationStart)
	}
	if start.Navigation == nil || start.Navigation.URL != "https://example.com/next" {
		t.Errorf("NavigationStart navigation = %+v", start.Navigation)
	}

	end := NewNavigationEndEvent("https://example.com/next", "245ms")
	if end.Type != EventTypeNavigationEnd {
		t.Errorf("NavigationEnd type = %v, want %v", end.Type, EventTypeNavigationEnd)
	}
	if end.Navigation.Duration != "245ms" {
		t.Errorf("NavigationEnd duration = %v, want '245ms'", end.Navigation.Duration)
	}

	err := errors.New("url not in scope")
	failed := NewNavigationFailedEvent("https://other.example.com/", err)
	if failed.Type != EventTypeNavigationFailed {
		t.Errorf("NavigationFailed type = %v, want %v", failed.Type, EventTypeNavigationFailed)
	}
	if failed.Error != err {
		t.Error("NavigationFailed error not set correctly")
	}
	if failed.Navigation.ErrorMessage != "url not in scope" {
		t.Errorf("NavigationFailed error message = %v", failed.Navigation.ErrorMessage)
	}
	if failed.Navigation.URL != "https://other.example.com/" {
		t.Errorf("NavigationFailed url = %v", failed.Navigation.URL)
	}
}

func TestNewAPIEvents(t *testing.T) {
	start := NewAPICallStartEvent(5000, 20480, 2)
	if start.Type != EventTypeAPICallStart {
		t.Errorf("APICallStart type = %v, want %v", start.Type, EventTypeAPICallStart)
	}
	if start.APICallInfo == nil {
		t.Fatal("APICallInfo not set")
	}
	if start.APICallInfo.ContextTokens != 5000 {
		t.Errorf("ContextTokens = %v, want %v", start.APICallInfo.ContextTokens, 5000)
	}
	if start.APICallInfo.MaxContextTokens != 20480 {
		t.Errorf("MaxContextTokens = %v, want %v", start.APICallInfo.MaxContextTokens, 20480)
	}
	if start.APICallInfo.Attempt != 2 {
		t.Errorf("Attempt = %v, want %v", start.APICallInfo.Attempt, 2)
	}

	end := NewAPICallEndEvent()
	if end.Type != EventTypeAPICallEnd {
		t.Errorf("APICallEnd type = %v, want %v", end.Type, EventTypeAPICallEnd)
	}
}

func TestNewTokenUsageEvent(t *testing.T) {
	usage := NewTokenUsageEvent(1200, 300, 1500)
	if usage.Type != EventTypeTokenUsage {
		t.Errorf("TokenUsage type = %v, want %v", usage.Type, EventTypeTokenUsage)
	}
	if usage.TokenUsage == nil {
		t.Fatal("TokenUsage not set")
	}
	if usage.TokenUsage.PromptTokens != 1200 {
		t.Errorf("PromptTokens = %v, want %v", usage.TokenUsage.PromptTokens, 1200)
	}
	if usage.TokenUsage.CompletionTokens != 300 {
		t.Errorf("CompletionTokens = %v, want %v", usage.TokenUsage.CompletionTokens, 300)
	}
	if usage.TokenUsage.TotalTokens != 1500 {
		t.Errorf("TotalTokens = %v, want %v", usage.TokenUsage.TotalTokens, 1500)
	}
}

func TestNewOtherEvents(t *testing.T) {
	busyTrue := NewUpdateBusyEvent(true)
	if busyTrue.Type != EventTypeUpdateBusy {
		t.Errorf("UpdateBusy type = %v, want %v", busyTrue.Type, EventTypeUpdateBusy)
	}
	if !busyTrue.IsBusy {
		t.Error("UpdateBusy should be busy")
	}

	busyFalse := NewUpdateBusyEvent(false)
	if busyFalse.IsBusy {
		t.Error("UpdateBusy should not be busy")
	}

	turnEnd := NewTurnEndEvent()
	if turnEnd.Type != EventTypeTurnEnd {
		t.Errorf("TurnEnd type = %v, want %v", turnEnd.Type, EventTypeTurnEnd)
	}

	err := errors.New("test error")
	errorEvent := NewErrorEvent(err)
	if errorEvent.Type != EventTypeError {
		t.Errorf("Error type = %v, want %v", errorEvent.Type, EventTypeError)
	}
	if errorEvent.Error != err {
		t.Error("Error event error not set correctly")
	}

	state := NewStateChangeEvent("loaded")
	if state.Type != EventTypeStateChange {
		t.Errorf("StateChange type = %v, want %v", state.Type, EventTypeStateChange)
	}
	if state.State != "loaded" {
		t.Errorf("StateChange state = %v, want 'loaded'", state.State)
	}
}

func TestAgentEventWithMetadata(t *testing.T) {
	event := NewMessageContentEvent("test")
	key := "test_key"
	value := "test_value"

	result := event.WithMetadata(key, value)

	if result != event {
		t.Error("WithMetadata should return the same event for chaining")
	}
	if event.Metadata[key] != value {
		t.Errorf("WithMetadata did not set metadata correctly, got %v, want %v", event.Metadata[key], value)
	}
}

func TestAgentEventHelpers(t *testing.T) {
	tests := []struct {
		event        *AgentEvent
		name         string
		isMessage    bool
		isDirective  bool
		isNavigation bool
		isLoad       bool
		isApi        bool
		isContent    bool
		isError      bool
	}{
		{
			name:      "message_start",
			event:     NewMessageStartEvent(),
			isMessage: true,
		},
		{
			name:      "message_content",
			event:     NewMessageContentEvent("test"),
			isMessage: true,
			isContent: true,
		},
		{
			name:        "directive_content",
			event:       NewDirectiveContentEvent("test"),
			isDirective: true,
			isContent:   true,
		},
		{
			name:        "directive_end",
			event:       NewDirectiveEndEvent(),
			isDirective: true,
		},
		{
			name:         "navigation_start",
			event:        NewNavigationStartEvent("https://example.com/"),
			isNavigation: true,
		},
		{
			name:         "navigation_failed",
			event:        NewNavigationFailedEvent("https://example.com/", errors.New("denied")),
			isNavigation: true,
		},
		{
			name:   "load_start",
			event:  NewLoadStartEvent("https://example.com/"),
			isLoad: true,
		},
		{
			name:   "resource_loaded",
			event:  NewResourceLoadedEvent(&ResourceInfo{}),
			isLoad: true,
		},
		{
			name:  "api_call_start",
			event: NewAPICallStartEvent(1000, 2000, 1),
			isApi: true,
		},
		{
			name:    "error",
			event:   NewErrorEvent(errors.New("test")),
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.IsMessageEvent() != tt.isMessage {
				t.Errorf("IsMessageEvent() = %v, want %v", tt.event.IsMessageEvent(), tt.isMessage)
			}
			if tt.event.IsDirectiveEvent() != tt.isDirective {
				t.Errorf("IsDirectiveEvent() = %v, want %v", tt.event.IsDirectiveEvent(), tt.isDirective)
			}
			if tt.event.IsNavigationEvent() != tt.isNavigation {
				t.Errorf("IsNavigationEvent() = %v, want %v", tt.event.IsNavigationEvent(), tt.isNavigation)
			}
			if tt.event.IsLoadEvent() != tt.isLoad {
				t.Errorf("IsLoadEvent() = %v, want %v", tt.event.IsLoadEvent(), tt.isLoad)
			}
			if tt.event.IsAPIEvent() != tt.isApi {
				t.Errorf("IsAPIEvent() = %v, want %v", tt.event.IsAPIEvent(), tt.isApi)
			}
			if tt.event.IsContentEvent() != tt.isContent {
				t.Errorf("IsContentEvent() = %v, want %v", tt.event.IsContentEvent(), tt.isContent)
			}
			if tt.event.IsErrorEvent() != tt.isError {
				t.Errorf("IsErrorEvent() = %v, want %v", tt.event.IsErrorEvent(), tt.isError)
			}
		})
	}
}
