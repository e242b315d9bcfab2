// Package translate converts scraped recipes into appliance-notation drafts.
//
// The conversion is delegated to Gemini: the model rewrites free-form
// instructions into Thermomix notation, normalizes the ingredient list and
// proposes annotations. Position claims in the response are not trusted;
// [ParseDraft] enforces shape only and leaves position resolution to the
// annotate package.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/schemas"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiTranslator converts source recipes to drafts through the Gemini API.
type GeminiTranslator struct {
	client *genai.Client
	model  string
}

// NewGeminiTranslator builds a translator for the given API key. An empty
// model selects [DefaultModel].
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: translator API key", shared.ErrMissingCredentials)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translator client: %w", err)
	}

	return &GeminiTranslator{client: client, model: model}, nil
}

// Translate converts a source recipe into a draft.
func (t *GeminiTranslator) Translate(ctx context.Context, source *models.SourceRecipe) (*models.RecipeDraft, error) {
	model := t.client.GenerativeModel(t.model)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(source)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTranslation, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	draft, err := ParseDraft(text)
	if err != nil {
		return nil, err
	}
	if draft.SourceURL == "" {
		draft.SourceURL = source.URL
	}
	return draft, nil
}

// Close releases the underlying API client.
func (t *GeminiTranslator) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// ParseDraft parses a model response into a draft. Markdown fences are
// stripped, the payload is checked against the draft schema and the decoded
// draft is validated for shape.
func ParseDraft(raw string) (*models.RecipeDraft, error) {
	payload := []byte(cleanJSONBlock(raw))
	if err := schemas.Validate(schemas.RecipeDraft, payload); err != nil {
		return nil, err
	}

	var draft models.RecipeDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTranslation, err)
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTranslation, err)
	}
	return &draft, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", shared.ErrTranslation)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in response", shared.ErrTranslation)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts in response", shared.ErrTranslation)
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

const promptTemplate = `You convert web recipes into recipes for a Thermomix kitchen machine.

Rewrite the recipe below in its own language. Normalize the ingredient list:
one line per ingredient with quantity and unit embedded, like "200 g
cashewnoten", duplicates merged. Rewrite the instructions as short steps and
express every machine action inline in Thermomix notation:

  30 sec/snelheid 5
  5 min/100°C/snelheid 2
  4 min/varoma/snelheid 1
  2 min/⟲/snelheid 3

The ⟲ glyph marks reverse blade rotation. Steps without a machine action
stay plain text.

Annotate each step:
- For every machine notation in the step text, add an annotation of type
  "tts" whose "setting" object carries the time in seconds, the speed level
  as text, the temperature as text ("100" for 100°C, "varoma", or "" when
  unheated) and "reverse" true when ⟲ is used.
- For every ingredient the step uses, add an annotation of type
  "ingredient" with "ingredient" set to the exact line from the ingredients
  list and "mention" set to the words in the step text that refer to it.
- Give each annotation a "position": "offset" and "length" counted in
  characters of the step text.

Respond with a single JSON object and nothing else:

{
  "name": "...",
  "ingredients": ["..."],
  "steps": [
    {
      "text": "...",
      "annotations": [
        {"type": "tts", "position": {"offset": 0, "length": 1},
         "setting": {"time": 30, "speed": "5", "temperature": "", "reverse": false}},
        {"type": "ingredient", "position": {"offset": 0, "length": 1},
         "ingredient": "...", "mention": "..."}
      ]
    }
  ],
  "totalTime": 0,
  "prepTime": 0,
  "yield": 0
}

Times are in seconds. Use 0 for unknown times and yield.

Recipe:

%s`

// buildPrompt renders the source recipe into the instruction prompt.
func buildPrompt(source *models.SourceRecipe) string {
	payload, _ := json.MarshalIndent(source, "", "  ")
	return fmt.Sprintf(promptTemplate, payload)
}
