// Package mcp exposes a Scout agent over the Model Context Protocol.
//
// The server speaks MCP over stdio, which lets MCP-capable clients (editor
// assistants, desktop agents) use Scout as their page reader: load a source
// once, then ask questions against the budgeted context instead of pasting
// raw page text into their own windows. One server holds one agent and one
// session, matching the single-source model of the interactive drivers.
//
// Tools:
//
//   - load_url:        fetch a page or document URL into the session
//   - load_document:   read a local file into the session
//   - ask:             drive one conversation turn and return the reply
//   - list_links:      list the current source's page and file links
//   - current_source:  describe the loaded source, optionally with text
//   - reset:           clear the session
//
// Each load_url, load_document, ask, and reset call drives exactly one agent
// turn: the call sends one input on the agent's channel pair and blocks
// until the turn ends. When an ask turn ends in a directive navigation, the
// call returns the navigation notice and the new source summary instead of
// an assistant reply. list_links and current_source read the session
// directly and never touch the model.
//
// Example usage:
//
//	provider, _ := ollama.NewProvider()
//	ag := agent.NewDefaultAgent(provider)
//
//	server := mcp.NewServer(ag, "0.1.0")
//	if err := server.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Tool calls arrive concurrently from the client; the server serializes them
// onto the agent, so a slow ask holds later calls until its turn completes.
package mcp
