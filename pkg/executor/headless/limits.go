package headless

import (
	"fmt"
	"sync"
	"time"
)

// RunLimiter enforces run limits during headless execution
type RunLimiter struct {
	config *LimitConfig

	// Runtime state tracking
	turnsTaken  int
	navigations int
	tokensUsed  int
	startTime   time.Time

	mu sync.RWMutex
}

// LimitViolation represents a run limit violation error
type LimitViolation struct {
	Type    ViolationType
	Message string
	Details map[string]interface{}
}

func (e *LimitViolation) Error() string {
	return fmt.Sprintf("run limit exceeded (%s): %s", e.Type, e.Message)
}

// ViolationType identifies the type of limit that was exceeded
type ViolationType string

const (
	ViolationTurnCount       ViolationType = "turn_count"
	ViolationNavigationCount ViolationType = "navigation_count"
	ViolationTokenLimit      ViolationType = "token_limit"
	ViolationTimeout         ViolationType = "timeout"
)

// NewRunLimiter creates a new run limiter
func NewRunLimiter(config LimitConfig) *RunLimiter {
	return &RunLimiter{
		config:    &config,
		startTime: time.Now(),
	}
}

// RecordTurn validates the turn limit and counts a new conversation turn.
// The violating turn is rejected before it runs.
func (rl *RunLimiter) RecordTurn() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.config.MaxTurns > 0 && rl.turnsTaken >= rl.config.MaxTurns {
		return &LimitViolation{
			Type:    ViolationTurnCount,
			Message: fmt.Sprintf("maximum turn count exceeded (%d)", rl.config.MaxTurns),
			Details: map[string]interface{}{
				"max_turns":   rl.config.MaxTurns,
				"turns_taken": rl.turnsTaken,
			},
		}
	}

	rl.turnsTaken++
	return nil
}

// RecordNavigation counts a completed directive navigation and validates
// against the navigation limit
func (rl *RunLimiter) RecordNavigation(url string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.navigations++

	if rl.config.MaxNavigations > 0 && rl.navigations > rl.config.MaxNavigations {
		return &LimitViolation{
			Type:    ViolationNavigationCount,
			Message: fmt.Sprintf("maximum navigation count exceeded (%d)", rl.config.MaxNavigations),
			Details: map[string]interface{}{
				"max_navigations": rl.config.MaxNavigations,
				"navigations":     rl.navigations,
				"url":             url,
			},
		}
	}

	return nil
}

// RecordTokenUsage records token usage and validates against the limit
func (rl *RunLimiter) RecordTokenUsage(tokens int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokensUsed += tokens

	if rl.config.MaxTokens > 0 && rl.tokensUsed > rl.config.MaxTokens {
		return &LimitViolation{
			Type:    ViolationTokenLimit,
			Message: fmt.Sprintf("maximum token usage exceeded (%d)", rl.config.MaxTokens),
			Details: map[string]interface{}{
				"max_tokens":  rl.config.MaxTokens,
				"tokens_used": rl.tokensUsed,
			},
		}
	}

	return nil
}

// CheckTimeout checks if the run has exceeded the timeout
func (rl *RunLimiter) CheckTimeout() error {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if rl.config.Timeout <= 0 {
		return nil // No timeout configured
	}

	elapsed := time.Since(rl.startTime)
	if elapsed > rl.config.Timeout {
		return &LimitViolation{
			Type:    ViolationTimeout,
			Message: fmt.Sprintf("run timeout exceeded (%v)", rl.config.Timeout),
			Details: map[string]interface{}{
				"timeout": rl.config.Timeout,
				"elapsed": elapsed,
			},
		}
	}

	return nil
}

// GetCurrentState returns the current limit tracking state
func (rl *RunLimiter) GetCurrentState() *LimitState {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return &LimitState{
		TurnsTaken:  rl.turnsTaken,
		Navigations: rl.navigations,
		TokensUsed:  rl.tokensUsed,
		Elapsed:     time.Since(rl.startTime),
	}
}

// LimitState represents the current state of limit tracking
type LimitState struct {
	TurnsTaken  int
	Navigations int
	TokensUsed  int
	Elapsed     time.Duration
}
