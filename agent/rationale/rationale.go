package rationale

import (
	"context"
	"embed"
	"fmt"
	"log"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/scipunch/aidigest/config"
)

//go:embed *.prompt
var prompts embed.FS

const (
	agentName  = "rationale"
	promptName = "rationale"
)

// Agent uses Gemini to explain why a feed item matters
type Agent struct {
	prompt *ai.Prompt
	g      *genkit.Genkit
	model  string
}

// New creates a rationale agent with its own genkit instance.
// It fails fast if the prompt is not found or Gemini credentials are invalid.
func New(ctx context.Context, creds config.GeminiCredentials) (*Agent, error) {
	if !creds.IsValid() {
		return nil, fmt.Errorf("invalid Gemini credentials: API key and model must be set")
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: creds.APIKey,
		}),
		genkit.WithPromptFS(prompts),
		genkit.WithPromptDir("."),
		genkit.WithDefaultModel(fmt.Sprintf("googleai/%s", creds.Model)),
	)

	// Fail fast if prompt wasn't found
	prompt := genkit.LookupPrompt(g, promptName)
	if prompt == nil {
		log.Fatalf("prompt '%s' not found in embedded files", promptName)
	}

	return &Agent{
		prompt: &prompt,
		g:      g,
		model:  creds.Model,
	}, nil
}

// Name returns the agent identifier
func (a *Agent) Name() string {
	return agentName
}

// Model returns the configured Gemini model name
func (a *Agent) Model() string {
	return a.model
}

// Process generates a short rationale for the given item
func (a *Agent) Process(ctx context.Context, title, summary string) (string, error) {
	resp, err := (*a.prompt).Execute(ctx,
		ai.WithInput(map[string]any{"title": title, "summary": summary}))
	if err != nil {
		return "", fmt.Errorf("failed to execute rationale prompt: %w", err)
	}

	return resp.Text(), nil
}
