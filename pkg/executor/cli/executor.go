// Package cli provides a command-line executor for Scout agents.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/entrhq/scout/pkg/agent"
//	    "github.com/entrhq/scout/pkg/executor/cli"
//	    "github.com/entrhq/scout/pkg/llm/ollama"
//	)
//
//	func main() {
//	    provider, _ := ollama.NewProvider(
//	        ollama.WithModel("llama3.1"),
//	    )
//
//	    ag := agent.NewDefaultAgent(provider)
//
//	    executor := cli.NewExecutor(ag)
//
//	    if err := executor.Run(context.Background()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/types"
)

const sourcePreviewLimit = 2000

// Executor is a CLI-based executor that enables turn-by-turn conversation
// with an agent through terminal input/output.
type Executor struct {
	agent  agent.Agent
	reader *bufio.Reader
	writer io.Writer

	// Display options
	showDirectives bool
	showUsage      bool

	// State tracking
	messageStartPrinted bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowDirectives reveals the raw navigation directive JSON as the model
// streams it. Off by default; navigation is announced by its own events.
func WithShowDirectives(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showDirectives = show
	}
}

// WithShowUsage enables printing token usage after each turn.
func WithShowUsage(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showUsage = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// NewExecutor creates a new CLI executor for the given agent.
func NewExecutor(agent agent.Agent, opts ...ExecutorOption) *Executor {
	e := &Executor{
		agent:  agent,
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run starts the executor and begins the conversation loop.
// Returns when the user exits or an error occurs.
func (e *Executor) Run(ctx context.Context) error {
	// Start the agent
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	channels := e.agent.GetChannels()

	// Start event handler in background
	eventsDone := make(chan struct{})
	turnEnd := make(chan struct{}, 1)
	go e.handleEvents(channels.Event, eventsDone, turnEnd)

	// Print usage hint
	fmt.Fprintln(e.writer, "Load a source with /load <url> or /open <path>, then ask questions about it.")
	fmt.Fprintln(e.writer, "Type /help for commands, /quit to exit.")
	fmt.Fprintln(e.writer)

	// Main conversation loop
	for {
		// Check if context is canceled
		select {
		case <-ctx.Done():
			e.shutdown(ctx)
			<-eventsDone
			return ctx.Err()
		default:
		}

		// Read user input
		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				e.shutdown(ctx)
				<-eventsDone
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)

		// Skip empty input
		if input == "" {
			continue
		}

		quit, waitTurn := e.dispatch(channels, input)
		if quit {
			e.shutdown(ctx)
			<-eventsDone
			return nil
		}
		if waitTurn {
			<-turnEnd
		}
	}
}

// dispatch routes one line of input to the agent. It returns whether the
// loop should exit and whether a turn was started that must finish before
// the next prompt.
func (e *Executor) dispatch(channels *types.AgentChannels, input string) (quit, waitTurn bool) {
	if input == "exit" || input == "quit" {
		return true, false
	}

	if !strings.HasPrefix(input, "/") {
		channels.Input <- types.NewUserInput(input)
		return false, true
	}

	command, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "/quit", "/exit":
		return true, false

	case "/help":
		e.printHelp()
		return false, false

	case "/load":
		if args == "" {
			fmt.Fprintln(e.writer, "Usage: /load <url>")
			return false, false
		}
		channels.Input <- types.NewLoadURLInput(args)
		return false, true

	case "/open":
		if args == "" {
			fmt.Fprintln(e.writer, "Usage: /open <path>")
			return false, false
		}
		data, err := os.ReadFile(args)
		if err != nil {
			fmt.Fprintf(e.writer, "❌ Error: %v\n", err)
			return false, false
		}
		channels.Input <- types.NewLoadDocumentInput(filepath.Base(args), data)
		return false, true

	case "/links":
		e.printLinks()
		return false, false

	case "/source":
		e.printSource()
		return false, false

	case "/context":
		e.printContext()
		return false, false

	case "/reset":
		channels.Input <- types.NewResetInput()
		return false, true

	default:
		fmt.Fprintf(e.writer, "Unknown command %s. Type /help for commands.\n", command)
		return false, false
	}
}

func (e *Executor) printHelp() {
	fmt.Fprintln(e.writer, "Commands:")
	fmt.Fprintln(e.writer, "  /load <url>    load a web page or PDF into the session")
	fmt.Fprintln(e.writer, "  /open <path>   load a local document (pdf, md, txt, csv, json)")
	fmt.Fprintln(e.writer, "  /links         list the links found on the current page")
	fmt.Fprintln(e.writer, "  /source        show the loaded source text")
	fmt.Fprintln(e.writer, "  /context       show context window usage")
	fmt.Fprintln(e.writer, "  /reset         clear the conversation and the loaded source")
	fmt.Fprintln(e.writer, "  /quit          exit")
	fmt.Fprintln(e.writer, "Anything else is sent to the assistant as a question.")
}

func (e *Executor) printLinks() {
	resource := e.agent.GetSession().Resource()
	if resource == nil {
		fmt.Fprintln(e.writer, "No source loaded. Use /load <url> first.")
		return
	}

	if len(resource.Links) == 0 && len(resource.Files) == 0 {
		fmt.Fprintln(e.writer, "No links found on this page.")
		return
	}

	if len(resource.Links) > 0 {
		fmt.Fprintf(e.writer, "Links (%d):\n", len(resource.Links))
		for _, link := range resource.Links {
			fmt.Fprintf(e.writer, "  - %s: %s\n", link.Label, link.URL)
		}
	}
	if len(resource.Files) > 0 {
		fmt.Fprintf(e.writer, "Files (%d):\n", len(resource.Files))
		for _, file := range resource.Files {
			fmt.Fprintf(e.writer, "  - %s: %s\n", file.Label, file.URL)
		}
	}
}

func (e *Executor) printSource() {
	resource := e.agent.GetSession().Resource()
	if resource == nil {
		fmt.Fprintln(e.writer, "No source loaded. Use /load <url> first.")
		return
	}

	if resource.Title != "" {
		fmt.Fprintf(e.writer, "Title: %s\n", resource.Title)
	}
	fmt.Fprintf(e.writer, "Source: %s\n", resource.SourceID)

	text := resource.Text
	if len(text) > sourcePreviewLimit {
		fmt.Fprintln(e.writer, text[:sourcePreviewLimit])
		fmt.Fprintf(e.writer, "… (%d more bytes)\n", len(text)-sourcePreviewLimit)
	} else {
		fmt.Fprintln(e.writer, text)
	}
}

func (e *Executor) printContext() {
	info := e.agent.GetContextInfo()
	if info == nil {
		fmt.Fprintln(e.writer, "Context information unavailable.")
		return
	}

	if info.SourceID != "" {
		fmt.Fprintf(e.writer, "Source: %s (%d bytes", info.SourceID, info.SourceTextBytes)
		if info.SourceTruncated {
			fmt.Fprint(e.writer, ", truncated")
		}
		fmt.Fprintf(e.writer, ", %d links, %d files)\n", info.LinkCount, info.FileCount)
	} else {
		fmt.Fprintln(e.writer, "Source: none")
	}
	fmt.Fprintf(e.writer, "Conversation: %d turns\n", info.ConversationTurns)
	fmt.Fprintf(e.writer, "Context: %d/%d tokens (%.1f%%), %d free\n",
		info.CurrentContextTokens, info.MaxContextTokens, info.UsagePercent, info.FreeTokens)
}

// handleEvents processes events from the agent and renders them to the terminal.
func (e *Executor) handleEvents(events <-chan *types.AgentEvent, done chan struct{}, turnEnd chan struct{}) {
	defer close(done)

	for event := range events {
		e.handleEvent(event, turnEnd)
	}
}

// handleEvent processes a single event based on its type
func (e *Executor) handleEvent(event *types.AgentEvent, turnEnd chan struct{}) {
	switch event.Type {
	case types.EventTypeMessageStart:
		e.handleMessageStart()
	case types.EventTypeMessageContent:
		e.handleMessageContent(event.Content)
	case types.EventTypeMessageEnd:
		e.handleMessageEnd()
	case types.EventTypeDirectiveStart:
		e.handleDirectiveStart()
	case types.EventTypeDirectiveContent:
		e.handleDirectiveContent(event.Content)
	case types.EventTypeDirectiveEnd:
		e.handleDirectiveEnd()
	case types.EventTypeLoadStart:
		e.handleLoadStart(event)
	case types.EventTypeResourceLoaded:
		e.handleResourceLoaded(event.Resource)
	case types.EventTypeNavigationStart:
		e.handleNavigationStart(event.Navigation)
	case types.EventTypeNavigationEnd:
		e.handleNavigationEnd(event.Navigation)
	case types.EventTypeNavigationFailed:
		e.handleNavigationFailed(event.Navigation)
	case types.EventTypeAPICallStart:
		e.handleAPICallStart(event.APICallInfo)
	case types.EventTypeTokenUsage:
		e.handleTokenUsage(event.TokenUsage)
	case types.EventTypeError:
		e.handleError(event.Error)
	case types.EventTypeUpdateBusy, types.EventTypeStateChange, types.EventTypeAPICallEnd:
		// Status events carry nothing to print in plain mode
	case types.EventTypeTurnEnd:
		e.handleTurnEnd(turnEnd)
	}
}

func (e *Executor) handleMessageStart() {
	e.messageStartPrinted = false
}

func (e *Executor) handleMessageContent(content string) {
	if content != "" && !e.messageStartPrinted {
		fmt.Fprintln(e.writer, "Assistant:")
		e.messageStartPrinted = true
	}
	fmt.Fprint(e.writer, content)
}

func (e *Executor) handleMessageEnd() {
	fmt.Fprintln(e.writer) // New line after message
}

func (e *Executor) handleDirectiveStart() {
	if e.showDirectives {
		fmt.Fprintln(e.writer, "\n[Navigation directive]")
	}
}

func (e *Executor) handleDirectiveContent(content string) {
	if e.showDirectives {
		fmt.Fprint(e.writer, content)
	}
}

func (e *Executor) handleDirectiveEnd() {
	if e.showDirectives {
		fmt.Fprintln(e.writer)
	}
}

func (e *Executor) handleLoadStart(event *types.AgentEvent) {
	if source, ok := event.Metadata["source_id"].(string); ok && source != "" {
		fmt.Fprintf(e.writer, "Loading %s ...\n", source)
	}
}

func (e *Executor) handleResourceLoaded(info *types.ResourceInfo) {
	if info == nil {
		return
	}

	title := info.Title
	if title == "" {
		title = info.SourceID
	}
	fmt.Fprintf(e.writer, "✅ Loaded: %s\n", title)
	fmt.Fprintf(e.writer, "   %d bytes of text", info.TextBytes)
	if info.Truncated {
		fmt.Fprint(e.writer, " (truncated)")
	}
	fmt.Fprintf(e.writer, ", %d links, %d files\n", info.LinkCount, info.FileCount)
}

func (e *Executor) handleNavigationStart(nav *types.Navigation) {
	if nav != nil {
		fmt.Fprintf(e.writer, "\n🧭 Navigating to %s ...\n", nav.URL)
	}
}

func (e *Executor) handleNavigationEnd(nav *types.Navigation) {
	if nav != nil {
		fmt.Fprintf(e.writer, "✅ Navigation complete (%s)\n", nav.Duration)
	}
}

func (e *Executor) handleNavigationFailed(nav *types.Navigation) {
	if nav != nil {
		fmt.Fprintf(e.writer, "❌ Navigation failed: %s\n", nav.ErrorMessage)
	}
}

func (e *Executor) handleAPICallStart(info *types.APICallInfo) {
	if info != nil && info.Attempt > 1 {
		fmt.Fprintf(e.writer, "\n[Retrying completion, attempt %d]\n", info.Attempt)
	}
}

func (e *Executor) handleTokenUsage(usage *types.TokenUsage) {
	if e.showUsage && usage != nil {
		fmt.Fprintf(e.writer, "[%d prompt + %d completion = %d tokens]\n",
			usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	}
}

func (e *Executor) handleError(err error) {
	fmt.Fprintf(e.writer, "\n❌ Error: %v\n", err)
}

func (e *Executor) handleTurnEnd(turnEnd chan struct{}) {
	select {
	case turnEnd <- struct{}{}:
	default:
	}
}

// shutdown gracefully shuts down the agent.
func (e *Executor) shutdown(ctx context.Context) {
	fmt.Fprintln(e.writer, "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := e.agent.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(e.writer, "Warning: shutdown error: %v\n", err)
	}
}
