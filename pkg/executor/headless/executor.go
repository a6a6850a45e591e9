package headless

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/types"
)

const (
	statusSuccess        = "success"
	statusFailed         = "failed"
	statusPartialSuccess = "partial_success"
)

const agentStopTimeout = 5 * time.Second

// Executor implements the headless mode executor. It loads the configured
// source, drives the task's prompt sequence through the agent, and writes
// run artifacts.
type Executor struct {
	agent          agent.Agent
	config         *Config
	limiter        *RunLimiter
	artifactWriter *ArtifactWriter
	logger         *Logger

	// Run state
	startTime    time.Time
	summary      *RunSummary
	limitTripped atomic.Bool
	stopOnce     sync.Once
}

// turnOutcome is what the event consumer hands back to the run loop when a
// turn ends.
type turnOutcome struct {
	reply       string
	navigatedTo string
	errMsg      string
}

// NewExecutor creates a new headless executor with a pre-configured agent
func NewExecutor(ag agent.Agent, config *Config) (*Executor, error) {
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Executor{
		agent:          ag,
		config:         config,
		limiter:        NewRunLimiter(config.Limits),
		artifactWriter: NewArtifactWriter(config.Artifacts.OutputDir, config.Artifacts),
		logger:         NewLogger(parseLogLevel(config.Logging.Verbosity)),
		summary: &RunSummary{
			Source: config.Source.String(),
			Task:   string(config.Task.Kind),
			Status: "running",
		},
	}, nil
}

// Run executes the headless research run
func (e *Executor) Run(ctx context.Context) error {
	e.startTime = time.Now()
	e.summary.StartTime = e.startTime

	prompts, err := buildPrompts(e.config.Task)
	if err != nil {
		return e.fail(err)
	}

	// Read the document before the agent starts so a bad path fails fast
	load, err := e.sourceInput()
	if err != nil {
		return e.fail(err)
	}

	e.logger.Header("Scout Research Run")
	e.logger.Infof("Source: %s", e.config.Source)
	e.logger.Infof("Task: %s (%d prompt(s))", e.config.Task.Kind, len(prompts))

	// Start agent
	if err := e.agent.Start(ctx); err != nil {
		return e.fail(fmt.Errorf("failed to start agent: %w", err))
	}

	// Create run context with timeout
	runCtx := ctx
	var cancel context.CancelFunc
	if e.config.Limits.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.config.Limits.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	channels := e.agent.GetChannels()

	// Start event consumer in goroutine
	eventDone := make(chan struct{})
	turnResult := make(chan turnOutcome, 1)
	go e.consumeEvents(channels.Event, turnResult, eventDone)

	// Drive the run, then stop the agent so the consumer drains and exits
	driveErr := e.drive(runCtx, channels, load, prompts, turnResult)

	e.stopAgent()
	<-eventDone

	if driveErr != nil {
		if errors.Is(driveErr, context.DeadlineExceeded) {
			return e.fail(fmt.Errorf("run timeout exceeded (%v)", e.config.Limits.Timeout))
		}
		return e.fail(driveErr)
	}

	// Finalize run
	return e.finalize()
}

// drive loads the source and runs the prompt sequence. It returns an error
// only for hard failures; limit trips are recorded and end the loop early.
func (e *Executor) drive(ctx context.Context, channels *types.AgentChannels, load *types.Input, prompts []string, turnResult <-chan turnOutcome) error {
	e.logger.Step(fmt.Sprintf("Loading %s", e.config.Source))

	outcome, err := e.driveTurn(ctx, channels, load, turnResult)
	if err != nil {
		return err
	}
	if outcome.errMsg != "" {
		return fmt.Errorf("failed to load source: %s", outcome.errMsg)
	}

	e.logger.Step(fmt.Sprintf("Running %d prompt(s)", len(prompts)))

	for i, prompt := range prompts {
		if e.limitTripped.Load() {
			break
		}

		if err := e.limiter.CheckTimeout(); err != nil {
			e.trip(err)
			break
		}

		if err := e.limiter.RecordTurn(); err != nil {
			e.trip(err)
			break
		}

		e.logger.Question(i+1, len(prompts), prompt)

		outcome, err := e.driveTurn(ctx, channels, types.NewUserInput(prompt), turnResult)
		if err != nil {
			return err
		}

		record := TurnRecord{Prompt: prompt, Reply: outcome.reply}
		if outcome.navigatedTo != "" {
			// The transcript mirrors the session history, where a
			// navigation turn records the notice as the reply.
			record.Reply = fmt.Sprintf(agent.NavigationNoticeFormat, outcome.navigatedTo)
			record.NavigatedTo = outcome.navigatedTo
		}
		if outcome.errMsg != "" {
			record.Error = outcome.errMsg
		}
		e.summary.Turns = append(e.summary.Turns, record)
	}

	return nil
}

// driveTurn sends one input and waits for the turn to end
func (e *Executor) driveTurn(ctx context.Context, channels *types.AgentChannels, input *types.Input, turnResult <-chan turnOutcome) (turnOutcome, error) {
	select {
	case channels.Input <- input:
	case <-ctx.Done():
		return turnOutcome{}, ctx.Err()
	}

	select {
	case outcome := <-turnResult:
		return outcome, nil
	case <-ctx.Done():
		return turnOutcome{}, ctx.Err()
	}
}

// consumeEvents drains the agent's event channel, assembling one turnOutcome
// per turn and enforcing navigation and token limits as they are reported.
// The run loop owns the agent's lifecycle; a tripped limit only stops new
// turns from being driven.
func (e *Executor) consumeEvents(events <-chan *types.AgentEvent, turnResult chan<- turnOutcome, eventDone chan<- struct{}) {
	defer close(eventDone)

	var reply strings.Builder
	var navigatedTo string
	var errMsg string
	promptTokens := 0
	completionTokens := 0

	for event := range events {
		e.logger.Debugf("Event received: %s", event.Type)

		switch event.Type {
		case types.EventTypeMessageStart:
			// A retried completion restarts the reply
			reply.Reset()

		case types.EventTypeMessageContent:
			reply.WriteString(event.Content)

		case types.EventTypeDirectiveStart:
			e.logger.Verbosef("Model emitted a navigation directive")

		case types.EventTypeLoadStart:
			if sourceID, ok := event.Metadata["source_id"].(string); ok {
				e.logger.Verbosef("Loading %s", sourceID)
			}

		case types.EventTypeResourceLoaded:
			if info := event.Resource; info != nil {
				e.logger.ResourceLoaded(info.Title, info.TextBytes, info.LinkCount, info.Truncated)
				if e.summary.SourceTitle == "" {
					e.summary.SourceTitle = info.Title
				}
			}

		case types.EventTypeNavigationStart:
			if event.Navigation != nil {
				e.logger.Verbosef("Navigating to %s", event.Navigation.URL)
			}

		case types.EventTypeNavigationEnd:
			if nav := event.Navigation; nav != nil {
				navigatedTo = nav.URL
				e.logger.Navigation(nav.URL, true, nav.Duration)
				e.summary.Navigations = append(e.summary.Navigations, NavigationRecord{
					URL:      nav.URL,
					Duration: nav.Duration,
				})
				if err := e.limiter.RecordNavigation(nav.URL); err != nil {
					e.trip(err)
				}
			}

		case types.EventTypeNavigationFailed:
			if nav := event.Navigation; nav != nil {
				e.logger.Navigation(nav.URL, false, nav.ErrorMessage)
				e.summary.Navigations = append(e.summary.Navigations, NavigationRecord{
					URL:   nav.URL,
					Error: nav.ErrorMessage,
				})
			}

		case types.EventTypeAPICallStart:
			if info := event.APICallInfo; info != nil {
				if info.Attempt > 1 {
					e.logger.Verbosef("Retrying completion (attempt %d)", info.Attempt)
				} else {
					e.logger.Debugf("Completion call: %d/%d context tokens", info.ContextTokens, info.MaxContextTokens)
				}
			}

		case types.EventTypeTokenUsage:
			if usage := event.TokenUsage; usage != nil {
				promptTokens += usage.PromptTokens
				completionTokens += usage.CompletionTokens
				e.logger.Verbosef("Tokens: %s prompt, %s completion", formatNumber(usage.PromptTokens), formatNumber(usage.CompletionTokens))
				if err := e.limiter.RecordTokenUsage(usage.TotalTokens); err != nil {
					e.trip(err)
				}
			}

		case types.EventTypeError:
			if event.Error != nil {
				errMsg = event.Error.Error()
				e.logger.Errorf("%s", errMsg)
			}

		case types.EventTypeTurnEnd:
			outcome := turnOutcome{
				reply:       reply.String(),
				navigatedTo: navigatedTo,
				errMsg:      errMsg,
			}
			reply.Reset()
			navigatedTo = ""
			errMsg = ""

			// The run loop may have already given up on this turn
			select {
			case turnResult <- outcome:
			default:
			}
		}
	}

	e.summary.Metrics.PromptTokens = promptTokens
	e.summary.Metrics.CompletionTokens = completionTokens
	e.logger.Debugf("Event consumer finished")
}

// trip records the first limit violation and stops further turns
func (e *Executor) trip(err error) {
	if e.limitTripped.Swap(true) {
		return
	}
	e.logger.Warningf("%v", err)
	e.summary.Error = err.Error()
}

// sourceInput builds the load input for the configured source
func (e *Executor) sourceInput() (*types.Input, error) {
	if e.config.Source.URL != "" {
		return types.NewLoadURLInput(e.config.Source.URL), nil
	}

	data, err := os.ReadFile(e.config.Source.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return types.NewLoadDocumentInput(filepath.Base(e.config.Source.DocumentPath), data), nil
}

// Stop gracefully stops the executor
func (e *Executor) Stop(ctx context.Context) error {
	return e.agent.Shutdown(ctx)
}

// stopAgent shuts the agent down exactly once, aborting any in-flight
// completion first. Uses a fresh context so shutdown still runs when the
// run context has expired.
func (e *Executor) stopAgent() {
	e.stopOnce.Do(func() {
		select {
		case e.agent.GetChannels().Cancel <- struct{}{}:
		default:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), agentStopTimeout)
		defer cancel()

		if err := e.agent.Shutdown(shutdownCtx); err != nil {
			e.logger.Warningf("Agent shutdown: %v", err)
		}
	})
}

// finalize completes the run and generates artifacts
func (e *Executor) finalize() error {
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(e.summary.StartTime)

	// Fill metrics from the limiter state
	state := e.limiter.GetCurrentState()
	e.summary.Metrics.Turns = state.TurnsTaken
	e.summary.Metrics.Navigations = state.Navigations
	e.summary.Metrics.TokensUsed = state.TokensUsed

	// A tripped limit or a failed turn ends the run short of full success;
	// answers collected before that still count for something.
	failedTurns := 0
	firstTurnError := ""
	for _, turn := range e.summary.Turns {
		if turn.Error != "" {
			failedTurns++
			if firstTurnError == "" {
				firstTurnError = turn.Error
			}
		}
	}
	answered := len(e.summary.Turns) - failedTurns

	if e.limitTripped.Load() || failedTurns > 0 {
		if answered > 0 {
			e.summary.Status = statusPartialSuccess
		} else {
			e.summary.Status = statusFailed
		}
		if e.summary.Error == "" {
			e.summary.Error = firstTurnError
		}
	} else {
		e.summary.Status = statusSuccess
	}

	// Decode the extract payload from the final reply
	if e.config.Task.Kind == TaskExtract && e.summary.Status != statusFailed && len(e.summary.Turns) > 0 {
		last := e.summary.Turns[len(e.summary.Turns)-1]
		payload, err := decodeExtractPayload(last.Reply)
		if err != nil {
			e.summary.Status = statusPartialSuccess
			e.summary.Error = fmt.Sprintf("extract failed: %v", err)
			e.logger.Warningf("Model reply did not parse as JSON; raw reply kept in the transcript")
		} else {
			e.summary.Extract = payload
		}
	}

	// Generate artifacts if enabled
	if e.config.Artifacts.Enabled {
		if err := e.artifactWriter.WriteAll(e.summary); err != nil {
			e.logger.Warningf("Failed to write artifacts: %v", err)
		} else {
			e.logger.Verbosef("Artifacts written to %s", e.config.Artifacts.OutputDir)
		}
	}

	e.logger.Summary(e.summary.Status, e.summary)

	// Return error only for complete failures, not partial success
	if e.summary.Status == statusFailed {
		return fmt.Errorf("run failed: %s", e.summary.Error)
	}

	return nil
}

// fail marks the run as failed and returns an error
func (e *Executor) fail(err error) error {
	e.summary.Status = statusFailed
	e.summary.Error = err.Error()
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(e.startTime)

	e.logger.Errorf("%v", err)

	// Try to generate artifacts even on failure
	if e.config.Artifacts.Enabled {
		if artifactErr := e.artifactWriter.WriteAll(e.summary); artifactErr != nil {
			e.logger.Warningf("Failed to write failure artifacts: %v", artifactErr)
		}
	}

	return err
}
