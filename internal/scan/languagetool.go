package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultLanguageToolURL is the public LanguageTool API endpoint.
const DefaultLanguageToolURL = "https://api.languagetool.org"

// relevantCategories are the LanguageTool rule categories worth surfacing;
// style nits outside these are noise for a reliability report.
var relevantCategories = map[string]struct{}{
	"TYPOS":       {},
	"GRAMMAR":     {},
	"CASING":      {},
	"COMPOUNDING": {},
	"TYPOGRAPHY":  {},
}

// Issue is a single finding in a scanned document, shared by the grammar
// checker and the model analysis.
type Issue struct {
	Excerpt          string   `json:"excerpt"`
	Word             string   `json:"word,omitempty"`
	Description      string   `json:"description"`
	Suggestions      []string `json:"suggestions,omitempty"`
	Type             string   `json:"type"`
	ProblemType      string   `json:"problemType"`
	NeedsSourceCheck bool     `json:"needsSourceCheck"`
	SourceQuery      string   `json:"sourceQuery,omitempty"`
}

// LanguageToolClient calls the LanguageTool v2 check endpoint.
type LanguageToolClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLanguageToolClient(baseURL string) *LanguageToolClient {
	if baseURL == "" {
		baseURL = DefaultLanguageToolURL
	}
	return &LanguageToolClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string `json:"message"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
	Rule struct {
		Category struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"category"`
	} `json:"rule"`
}

// Check runs spelling and grammar analysis and maps relevant matches to
// issues with a short excerpt window around each finding.
func (c *LanguageToolClient) Check(ctx context.Context, text, lang string) ([]Issue, error) {
	form := url.Values{
		"text":        {text},
		"language":    {lang},
		"enabledOnly": {"false"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build languagetool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languagetool status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read languagetool response: %w", err)
	}
	var parsed ltResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode languagetool response: %w", err)
	}

	var issues []Issue
	for _, m := range parsed.Matches {
		if _, relevant := relevantCategories[m.Rule.Category.ID]; !relevant {
			continue
		}
		problemType := m.Rule.Category.Name
		if problemType == "" {
			problemType = "Orthographe / Grammaire"
		}
		suggestions := make([]string, 0, 3)
		for _, r := range m.Replacements {
			suggestions = append(suggestions, r.Value)
			if len(suggestions) == 3 {
				break
			}
		}
		issues = append(issues, Issue{
			Excerpt:     excerpt(text, m.Offset, m.Length),
			Word:        substr(text, m.Offset, m.Offset+m.Length),
			Description: m.Message,
			Suggestions: suggestions,
			Type:        "Erreur linguistique",
			ProblemType: problemType,
		})
	}
	return issues, nil
}

// excerpt returns the matched span with 20 characters of context each side.
func excerpt(text string, offset, length int) string {
	return strings.TrimSpace(substr(text, offset-20, offset+length+20))
}

// substr slices by character positions, clamped to the text bounds.
func substr(text string, start, end int) string {
	runes := []rune(text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}
