package llm

import "fmt"

// EngineError reports a completion call that failed after the retry policy
// was exhausted. It is terminal for the turn that issued the call: the
// operator's message stays in history and no assistant turn is recorded.
type EngineError struct {
	// Provider is the provider kind that failed (e.g., "ollama").
	Provider string

	// Attempts is how many calls were made before giving up.
	Attempts int

	// Err is the final underlying failure.
	Err error
}

func (e *EngineError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("completion failed after %d attempts (%s): %v", e.Attempts, e.Provider, e.Err)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Provider, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
