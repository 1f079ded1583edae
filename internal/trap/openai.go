package trap

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// OpenAIGenerator asks a chat model for adversarial questions. The prompt
// text is opaque configuration; only the count and theme hints are
// interpolated.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAIGenerator builds a generator. prompt must contain one %d verb for
// the question count; an empty prompt or model falls back to the defaults.
func NewOpenAIGenerator(client *openai.Client, model, prompt string) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	if prompt == "" {
		prompt = defaultTrapPrompt
	}
	return &OpenAIGenerator{client: client, model: model, prompt: prompt}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, n int, themeHints []string) ([]byte, error) {
	user := fmt.Sprintf(g.prompt, n)
	if len(themeHints) > 0 {
		user += "\nThèmes : " + strings.Join(themeHints, ", ")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}
	return []byte(resp.Choices[0].Message.Content), nil
}

const defaultTrapPrompt = `Génère %d questions QCM en français. Ce sont des "hallucinations contrôlées".
Elles doivent être détectables par un joueur vigilant.

Règles :
- 4 options plausibles, toutes différentes.
- "answer" DOIT être exactement une des options.
- MAIS l'explication DOIT contredire la réponse (erreur de calcul, logique incohérente, contradiction).
- explanation courte (1-2 phrases).
- Retourne STRICTEMENT du JSON valide :
{"questions":[{"q":"...","options":["A","B","C","D"],"answer":"...","explanation":"..."}]}`
