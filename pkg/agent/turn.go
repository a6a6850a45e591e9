package agent

import (
	"context"
	"strings"
	"time"

	"github.com/entrhq/scout/pkg/agent/prompts"
	"github.com/entrhq/scout/pkg/llm"
	"github.com/entrhq/scout/pkg/llm/parser"
	"github.com/entrhq/scout/pkg/llm/tokenizer"
	"github.com/entrhq/scout/pkg/types"
)

// promptContext holds the prepared prompt and related metadata
type promptContext struct {
	systemPrompt string
	messages     []*types.Message
	promptTokens int
}

// completionResult holds the collected streamed completion
type completionResult struct {
	content          string // full raw completion, message and directive parts in arrival order
	role             string
	completionTokens int
}

// processUserTurn runs one conversation turn: compose the prompt, stream
// the completion, then either record a reply or act on a navigation
// directive. At most one navigation fetch follows a turn; the model is
// never re-invoked automatically afterwards.
func (a *DefaultAgent) processUserTurn(ctx context.Context, content string) {
	if !a.session.HasResource() {
		a.emitEvent(types.NewErrorEvent(ErrNoResource))
		a.emitEvent(types.NewTurnEndEvent())
		return
	}

	// The user turn is recorded before the call so it survives an engine
	// failure; the operator retries by resubmitting.
	a.session.AddTurn(types.NewUserMessage(content))

	// Create cancellable context for this turn
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.cancelMu.Lock()
	a.cancelStream = cancel
	a.cancelMu.Unlock()

	defer func() {
		a.cancelMu.Lock()
		a.cancelStream = nil
		a.cancelMu.Unlock()
	}()

	// Emit busy status
	a.emitEvent(types.NewUpdateBusyEvent(true))
	defer a.emitEvent(types.NewUpdateBusyEvent(false))

	a.setState(StateAwaitingCompletion)

	pctx := a.preparePrompt()
	resp, err := a.callWithRetry(turnCtx, pctx)
	if err != nil {
		// No assistant turn is appended on failure.
		if turnCtx.Err() == nil {
			a.emitEvent(types.NewErrorEvent(err))
		}
		a.setState(StateLoaded)
		a.emitEvent(types.NewTurnEndEvent())
		return
	}

	a.recordTokenUsage(pctx, resp)

	url, found, derr := parser.ParseDirective(resp.content)
	switch {
	case derr != nil:
		// Marker present but no target. Reported, not fatal; the raw
		// completion stays out of the transcript.
		agentDebugLog.Warnf("Malformed navigation directive: %q", resp.content)
		a.emitEvent(types.NewErrorEvent(derr))
		a.setState(StateLoaded)

	case found:
		a.performNavigation(turnCtx, url)

	default:
		a.session.AddTurn(types.NewAssistantMessage(resp.content))
		a.setState(StateLoaded)
	}

	// Emit turn end
	a.emitEvent(types.NewTurnEndEvent())
}

// preparePrompt builds the system turn from the live resource plus the
// stored history, and counts prompt tokens.
func (a *DefaultAgent) preparePrompt() *promptContext {
	systemPrompt := prompts.NewPromptBuilder().
		WithCustomInstructions(a.customInstructions).
		WithResource(a.session.Resource()).
		WithMaxLinks(a.maxLinks).
		Build()

	history := a.session.History()
	messages := prompts.BuildMessages(systemPrompt, history)

	var promptTokens int
	if a.tokenizer != nil {
		promptTokens = a.tokenizer.CountMessagesTokens(messages)
	} else {
		promptTokens = tokenizer.EstimateMessagesTokens(messages)
	}
	agentDebugLog.Debugf("Prompt tokens before send: %d", promptTokens)

	return &promptContext{
		systemPrompt: systemPrompt,
		messages:     messages,
		promptTokens: promptTokens,
	}
}

// callWithRetry invokes the completion call with a bounded timeout and a
// capped retry policy. Nothing is mutated between attempts, so a retry
// composes the identical prompt. After exhaustion the failure surfaces as
// an EngineError.
func (a *DefaultAgent) callWithRetry(ctx context.Context, pctx *promptContext) (*completionResult, error) {
	var lastErr error

	for attempt := 0; attempt <= a.completionRetries; attempt++ {
		if attempt > 0 {
			agentDebugLog.Warnf("Retrying completion (attempt %d/%d): %v", attempt+1, a.completionRetries+1, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.retryBackoff * time.Duration(attempt)):
			}
		}

		resp, err := a.callOnce(ctx, pctx, attempt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	providerName := "unknown"
	if info := a.GetProvider().GetModelInfo(); info != nil {
		providerName = info.Provider
	}
	return nil, &llm.EngineError{
		Provider: providerName,
		Attempts: a.completionRetries + 1,
		Err:      lastErr,
	}
}

// callOnce performs a single completion call and collects the streamed
// response, forwarding content to the event channel as it arrives.
func (a *DefaultAgent) callOnce(ctx context.Context, pctx *promptContext, attempt int) (*completionResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.completionTimeout)
	defer cancel()

	a.emitEvent(types.NewAPICallStartEvent(pctx.promptTokens, a.maxContextTokens, attempt+1))

	stream, err := a.GetProvider().StreamCompletion(callCtx, pctx.messages)
	if err != nil {
		return nil, err
	}

	a.emitEvent(types.NewMessageStartEvent())

	var full strings.Builder
	var role string
	inDirective := false

	for chunk := range stream {
		if chunk.IsError() {
			a.emitEvent(types.NewMessageEndEvent())
			return nil, chunk.Error
		}
		if chunk.Role != "" {
			role = chunk.Role
		}
		if chunk.Content != "" {
			full.WriteString(chunk.Content)
			if chunk.IsDirective() {
				if !inDirective {
					inDirective = true
					a.emitEvent(types.NewDirectiveStartEvent())
				}
				a.emitEvent(types.NewDirectiveContentEvent(chunk.Content))
			} else {
				a.emitEvent(types.NewMessageContentEvent(chunk.Content))
			}
		}
		if chunk.Finished {
			break
		}
	}

	if inDirective {
		a.emitEvent(types.NewDirectiveEndEvent())
	}
	a.emitEvent(types.NewMessageEndEvent())
	a.emitEvent(types.NewAPICallEndEvent())

	var completionTokens int
	if a.tokenizer != nil {
		completionTokens = a.tokenizer.CountTokens(full.String())
	} else {
		completionTokens = tokenizer.EstimateTokens(full.String())
	}

	return &completionResult{
		content:          full.String(),
		role:             role,
		completionTokens: completionTokens,
	}, nil
}

// recordTokenUsage emits the token usage event for a completed call.
func (a *DefaultAgent) recordTokenUsage(pctx *promptContext, resp *completionResult) {
	if pctx.promptTokens > 0 || resp.completionTokens > 0 {
		totalTokens := pctx.promptTokens + resp.completionTokens
		a.emitEvent(types.NewTokenUsageEvent(pctx.promptTokens, resp.completionTokens, totalTokens))
	}
}
