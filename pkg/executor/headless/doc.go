// Package headless implements the headless executor for scripted research runs.
//
// The headless executor runs scout without an interactive operator: it loads
// a source, drives a fixed prompt sequence through the agent, and records
// everything the agent did. It is intended for cron jobs, CI pipelines, and
// batch collection (nightly summaries, scheduled data extraction). It
// provides:
//
// - Run limits to prevent runaway execution (turns, navigations, tokens, timeout)
// - Built-in task kinds: script, summarize, and extract
// - URL scope patterns for directive navigation
// - Artifact generation for auditing and downstream consumption
//
// Architecture:
//
// The executor drives the same channel-based agent the interactive drivers
// use. Prompts are sent one at a time; an event consumer collects replies,
// counts navigations and tokens against the configured limits, and signals
// each turn's end back to the run loop.
//
//	┌─────────────────────────────────────────────────────────┐
//	│                 Headless Executor                        │
//	│  - Prompt sequence (script / summarize / extract)       │
//	│  - Run limits                                           │
//	│  - Artifact generation                                  │
//	└──────────────────┬──────────────────────────────────────┘
//	                   │
//	                   ▼
//	        ┌──────────────────────┐
//	        │   DefaultAgent       │
//	        │ (one source, one     │
//	        │  budgeted context)   │
//	        └──────────────────────┘
//
// Example usage:
//
//	config := headless.DefaultConfig()
//	config.Source.URL = "https://example.com/article"
//	config.Task.Kind = headless.TaskScript
//	config.Task.Prompts = []string{"Who wrote this?", "Summarize the key claims."}
//
//	provider, _ := ollama.NewProvider()
//	ag := agent.NewDefaultAgent(provider)
//	executor, _ := headless.NewExecutor(ag, config)
//
//	if err := executor.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Task kinds:
//
// A script task runs the configured prompt list in order. A summarize task
// runs a single built-in prompt asking for a main idea plus key bullet
// points. An extract task instructs the model to reply with a single JSON
// object; the reply is fence-stripped, parsed, and written as a dated
// artifact, so a scheduled run can feed structured data into other systems.
//
// Run limits:
//
// The run limiter bounds what a run may consume:
// - Maximum conversation turns
// - Maximum directive navigations
// - Token usage limits
// - Run timeout
//
// A tripped limit stops new turns; the current turn completes and the run
// finishes as a partial success when answers were already collected.
//
// Artifacts:
//
// The artifact writer generates run reports:
// - run.json: Full run summary
// - transcript.md: Human-readable transcript
// - extract_YYYYMMDD.json: Parsed extract payload (extract tasks only)
package headless
