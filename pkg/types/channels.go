package types

import "sync"

// AgentChannels bundles the channels used to drive an agent and observe it.
// Input carries operator turns and load requests, Event streams agent
// activity back to the driver, Cancel aborts the in-flight operation,
// Shutdown asks the event loop to exit, and Done closes when it has.
type AgentChannels struct {
	// Input delivers operator inputs to the agent.
	Input chan *Input

	// Event streams agent events to the driver.
	Event chan *AgentEvent

	// Cancel aborts the in-flight turn without shutting the agent down.
	Cancel chan struct{}

	// Shutdown asks the agent's event loop to exit.
	Shutdown chan struct{}

	// Done closes once the event loop has exited.
	Done chan struct{}

	closeOnce sync.Once
}

// NewAgentChannels creates a channel set with the given buffer size for
// input and event channels. Control channels are unbuffered.
func NewAgentChannels(bufferSize int) *AgentChannels {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &AgentChannels{
		Input:    make(chan *Input, bufferSize),
		Event:    make(chan *AgentEvent, bufferSize),
		Cancel:   make(chan struct{}, 1),
		Shutdown: make(chan struct{}),
		Done:     make(chan struct{}),
	}
}

// Close closes the event channel. Safe to call more than once; the agent
// calls it as its event loop exits so drivers can range over Event.
func (c *AgentChannels) Close() {
	c.closeOnce.Do(func() {
		close(c.Event)
	})
}
