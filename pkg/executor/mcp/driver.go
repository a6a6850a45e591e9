package mcp

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/types"
)

// turnOutcome is what the event consumer hands back when a driven turn ends.
type turnOutcome struct {
	reply       string
	navigatedTo string
	resource    *types.ResourceInfo
	errMsg      string
}

// driver serializes tool calls onto the agent's channel pair. Each driven
// call sends exactly one input and blocks until the matching turn ends, so
// concurrent MCP requests queue instead of interleaving on one session.
type driver struct {
	agent    agent.Agent
	channels *types.AgentChannels
	outcomes chan turnOutcome
	done     chan struct{}

	mu sync.Mutex
}

func newDriver(ag agent.Agent) *driver {
	return &driver{
		agent:    ag,
		channels: ag.GetChannels(),
		outcomes: make(chan turnOutcome, 1),
		done:     make(chan struct{}),
	}
}

// start launches the event consumer. The agent must already be started.
func (d *driver) start(logger *log.Logger) {
	go d.consumeEvents(logger)
}

// stop shuts the agent down and waits for the event consumer to drain.
func (d *driver) stop() {
	shutdownCtx := context.Background()
	_ = d.agent.Shutdown(shutdownCtx)
	<-d.done
}

// turnAbortTimeout bounds how long an abandoned turn may take to wind down
// after its completion stream is cancelled.
const turnAbortTimeout = 5 * time.Second

// drive sends one input and waits for the turn to end. When the caller's
// context expires mid-turn the in-flight completion is cancelled and the
// call waits out the aborted turn, so the next call never inherits a stale
// outcome.
func (d *driver) drive(ctx context.Context, input *types.Input) (turnOutcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Drop the outcome of a turn that outlived its abort window
	select {
	case <-d.outcomes:
	default:
	}

	select {
	case d.channels.Input <- input:
	case <-ctx.Done():
		return turnOutcome{}, ctx.Err()
	}

	select {
	case outcome := <-d.outcomes:
		return outcome, nil
	case <-ctx.Done():
		d.abortTurn()
		return turnOutcome{}, ctx.Err()
	}
}

// abortTurn cancels the in-flight completion and waits briefly for the
// aborted turn to end.
func (d *driver) abortTurn() {
	select {
	case d.channels.Cancel <- struct{}{}:
	default:
	}

	timer := time.NewTimer(turnAbortTimeout)
	defer timer.Stop()

	select {
	case <-d.outcomes:
	case <-timer.C:
	case <-d.done:
	}
}

// consumeEvents drains the agent's event channel, assembling one turnOutcome
// per turn. It exits when the agent shuts down and closes the event channel.
func (d *driver) consumeEvents(logger *log.Logger) {
	defer close(d.done)

	var reply strings.Builder
	var navigatedTo string
	var errMsg string
	var resource *types.ResourceInfo

	for event := range d.channels.Event {
		switch event.Type {
		case types.EventTypeMessageStart:
			// A retried completion restarts the reply
			reply.Reset()

		case types.EventTypeMessageContent:
			reply.WriteString(event.Content)

		case types.EventTypeResourceLoaded:
			if event.Resource != nil {
				resource = event.Resource
				logger.Printf("resource loaded: %s (%d bytes)", event.Resource.SourceID, event.Resource.TextBytes)
			}

		case types.EventTypeNavigationEnd:
			if event.Navigation != nil {
				navigatedTo = event.Navigation.URL
				logger.Printf("navigated to %s", event.Navigation.URL)
			}

		case types.EventTypeNavigationFailed:
			if event.Navigation != nil {
				logger.Printf("navigation to %s failed: %s", event.Navigation.URL, event.Navigation.ErrorMessage)
			}

		case types.EventTypeError:
			if event.Error != nil {
				errMsg = event.Error.Error()
				logger.Printf("turn error: %s", errMsg)
			}

		case types.EventTypeTurnEnd:
			outcome := turnOutcome{
				reply:       reply.String(),
				navigatedTo: navigatedTo,
				resource:    resource,
				errMsg:      errMsg,
			}
			reply.Reset()
			navigatedTo = ""
			errMsg = ""
			resource = nil

			// The driving call may have already given up on this turn
			select {
			case d.outcomes <- outcome:
			default:
			}
		}
	}
}
