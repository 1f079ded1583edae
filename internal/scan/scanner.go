package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"iqai-quiz-service/internal/domain"
)

// MaxContentLength bounds scanned documents.
const MaxContentLength = 8000

// Reliability levels, keyed off the recomputed score.
const (
	LevelReliable       = "Fiable"
	LevelNeedsReview    = "À revoir"
	LevelNotDeliverable = "Non livrable"
)

// Request describes a document to scan.
type Request struct {
	Content string `json:"content"`
	Task    string `json:"task"`
	Sector  string `json:"sector,omitempty"`
}

// Category groups related issues in a report.
type Category struct {
	Name   string  `json:"name"`
	Issues []Issue `json:"issues"`
	Clean  bool    `json:"clean"`
}

// PromptSuggestion pairs a detected problem with a prompt fix.
type PromptSuggestion struct {
	Problem    string `json:"problem"`
	Suggestion string `json:"suggestion"`
}

// Report is the reliability analysis returned to the caller.
type Report struct {
	ReliabilityScore  int                `json:"reliabilityScore"`
	ReliabilityLevel  string             `json:"reliabilityLevel"`
	Summary           string             `json:"summary"`
	ScoreBreakdown    map[string]int     `json:"scoreBreakdown"`
	Categories        []Category         `json:"categories"`
	PromptSuggestions []PromptSuggestion `json:"promptSuggestions,omitempty"`
}

// ChatCompleter abstracts the analysis model.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIChat implements ChatCompleter with a chat completion call.
type OpenAIChat struct {
	client *openai.Client
	model  string
}

func NewOpenAIChat(client *openai.Client, model string) *OpenAIChat {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIChat{client: client, model: model}
}

func (c *OpenAIChat) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		MaxTokens:   3000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Scanner runs the content-reliability pipeline: grammar check and
// repetition detection first, then the model analysis, then a merge of the
// grammar findings into the model's report.
type Scanner struct {
	llm          ChatCompleter
	languageTool *LanguageToolClient
	systemPrompt string
	language     string
}

func NewScanner(llm ChatCompleter, lt *LanguageToolClient, systemPrompt, language string) *Scanner {
	if systemPrompt == "" {
		systemPrompt = defaultScanPrompt
	}
	if language == "" {
		language = "fr"
	}
	return &Scanner{llm: llm, languageTool: lt, systemPrompt: systemPrompt, language: language}
}

// Scan analyzes a document and returns the merged reliability report.
func (s *Scanner) Scan(ctx context.Context, req Request) (Report, error) {
	if strings.TrimSpace(req.Task) == "" {
		return Report{}, fmt.Errorf("%w: task", domain.ErrMissingField)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > MaxContentLength {
		return Report{}, fmt.Errorf("%w: content", domain.ErrMissingField)
	}

	var ltIssues []Issue
	if s.languageTool != nil {
		issues, err := s.languageTool.Check(ctx, content, s.language)
		if err != nil {
			// A grammar-checker outage degrades the report, it never blocks it.
			log.Printf("languagetool check failed: %v", err)
		} else {
			ltIssues = issues
		}
	}
	repetitions := DetectRepetitions(content)

	raw, err := s.llm.Complete(ctx, s.systemPrompt, s.buildUserPrompt(req, content, repetitions))
	if err != nil {
		return Report{}, err
	}

	var report Report
	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(raw))
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return Report{}, fmt.Errorf("decode analysis report: %w", err)
	}

	mergeLinguisticIssues(&report, ltIssues)
	return report, nil
}

func (s *Scanner) buildUserPrompt(req Request, content string, repetitions []Repetition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TÂCHE : %s\n", req.Task)
	sector := req.Sector
	if sector == "" {
		sector = "Non spécifié"
	}
	fmt.Fprintf(&b, "SECTEUR : %s\n\n", sector)
	fmt.Fprintf(&b, "DOCUMENT À ANALYSER :\n---\n%s\n---", content)

	if len(repetitions) > 0 {
		b.WriteString("\n\nRÉPÉTITIONS DÉTECTÉES (intègre-les toutes dans \"Incohérences structurelles\") :\n")
		for i, r := range repetitions {
			text := r.Text
			if len(text) > 80 {
				text = text[:80]
			}
			qualifier := "quasi-identique"
			if r.Exact {
				qualifier = "identique"
			}
			fmt.Fprintf(&b, "%d. %q — %d fois (%s)\n", i+1, text, r.Count, qualifier)
		}
		b.WriteString("Tu DOIS inclure chacune comme une issue distincte.")
	}
	b.WriteString("\n\nRetourne UNIQUEMENT le JSON final.")
	return b.String()
}

// mergeLinguisticIssues folds grammar-checker findings into the model
// report: issues land in the linguistic category, the linguistic score takes
// a penalty per issue, and the global score and level are recomputed.
func mergeLinguisticIssues(report *Report, ltIssues []Issue) {
	if len(ltIssues) == 0 {
		return
	}

	var target *Category
	for i := range report.Categories {
		name := strings.ToLower(report.Categories[i].Name)
		if strings.Contains(name, "linguistique") || strings.Contains(name, "orthographe") || strings.Contains(name, "erreur") {
			target = &report.Categories[i]
			break
		}
	}
	if target == nil {
		report.Categories = append(report.Categories, Category{Name: "Erreurs linguistiques"})
		target = &report.Categories[len(report.Categories)-1]
	}
	target.Issues = append(target.Issues, ltIssues...)
	target.Clean = len(target.Issues) == 0

	if report.ScoreBreakdown == nil {
		return
	}
	penalty := len(ltIssues) * 8
	if penalty > 40 {
		penalty = 40
	}
	linguistic := 100 - penalty
	if linguistic < 20 {
		linguistic = 20
	}
	report.ScoreBreakdown["linguistique"] = linguistic

	sum := 0
	for _, v := range report.ScoreBreakdown {
		sum += v
	}
	report.ReliabilityScore = int(float64(sum)/float64(len(report.ScoreBreakdown)) + 0.5)
	switch {
	case report.ReliabilityScore >= 70:
		report.ReliabilityLevel = LevelReliable
	case report.ReliabilityScore >= 40:
		report.ReliabilityLevel = LevelNeedsReview
	default:
		report.ReliabilityLevel = LevelNotDeliverable
	}
}

const defaultScanPrompt = `Tu es un agent d'analyse de documents. LanguageTool gère déjà l'orthographe et la grammaire de base — tu NE vérifies PAS l'orthographe, les accents ou les accords.

TES RESPONSABILITÉS EXCLUSIVES :
1. INCOHÉRENCES FACTUELLES — chiffres sans source, affirmations trop assertives, généralisations abusives, fausse précision.
2. INCOHÉRENCES STRUCTURELLES — répétitions d'idées (tu recevras la liste exhaustive), contradictions internes, structure disproportionnée.
3. TON & STYLE IA — transitions artificielles, formulations génériques, changements de registre injustifiés.
4. ADÉQUATION À LA TÂCHE — l'output ne répond pas à la demande, secteur ignoré, conseils trop génériques.

RÈGLES ABSOLUES :
- Ne signale JAMAIS une faute d'orthographe, d'accent ou d'accord.
- Ne signale une erreur que si tu en es certain.
- Si une catégorie est propre, marque clean: true et issues: [].
- Pour les chiffres douteux : needsSourceCheck = true + sourceQuery précise en anglais.

FORMAT : JSON uniquement, sans markdown.
{
  "reliabilityScore": <0-100>,
  "reliabilityLevel": <"Fiable" | "À revoir" | "Non livrable">,
  "summary": <string, 1-2 phrases>,
  "scoreBreakdown": { "factuel": <0-100>, "structure": <0-100>, "ton": <0-100>, "contexte": <0-100>, "linguistique": <0-100> },
  "categories": [{ "name": <string>, "issues": [{ "excerpt": <string>, "description": <string>, "type": <string>, "problemType": <string>, "needsSourceCheck": <boolean>, "sourceQuery": <string | null> }], "clean": <boolean> }],
  "promptSuggestions": [{ "problem": <string>, "suggestion": <string> }]
}`
