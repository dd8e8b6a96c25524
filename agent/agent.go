package agent

import "context"

// Agent defines the interface for rationale generation backends.
// Implementations turn an item's title and summary into a short
// explanation of why the item matters.
type Agent interface {
	// Process returns a one-to-two sentence rationale for the item
	Process(ctx context.Context, title, summary string) (string, error)

	// Name returns the agent identifier (e.g., "rationale")
	Name() string
}
