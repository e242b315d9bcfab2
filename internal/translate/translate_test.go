package translate

import (
	"errors"
	"strings"
	"testing"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

const draftResponse = `{
  "name": "Noedels met cashewsaus",
  "ingredients": ["250 g noedels", "200 g cashewnoten"],
  "steps": [
    {
      "text": "Maal de cashewnoten 10 sec/snelheid 8.",
      "annotations": [
        {"type": "tts", "position": {"offset": 20, "length": 17},
         "setting": {"time": 10, "speed": "8", "temperature": "", "reverse": false}},
        {"type": "ingredient", "position": {"offset": 8, "length": 11},
         "ingredient": "200 g cashewnoten", "mention": "cashewnoten"}
      ]
    }
  ],
  "totalTime": 900,
  "prepTime": 300,
  "yield": 2
}`

func TestParseDraft(t *testing.T) {
	t.Run("Plain JSON", func(t *testing.T) {
		draft, err := ParseDraft(draftResponse)
		if err != nil {
			t.Fatalf("expected draft to parse, got %v", err)
		}

		if draft.Name != "Noedels met cashewsaus" {
			t.Errorf("expected draft name, got %q", draft.Name)
		}
		if len(draft.Ingredients) != 2 {
			t.Errorf("expected 2 ingredients, got %v", draft.Ingredients)
		}
		if len(draft.Steps) != 1 || len(draft.Steps[0].Annotations) != 2 {
			t.Fatalf("expected 1 step with 2 annotations, got %+v", draft.Steps)
		}

		setting := draft.Steps[0].Annotations[0]
		if setting.Kind != models.KindSetting || setting.Setting == nil || setting.Setting.Time != 10 {
			t.Errorf("expected a 10s setting annotation, got %+v", setting)
		}
		mention := draft.Steps[0].Annotations[1]
		if mention.Kind != models.KindIngredient || mention.Mention != "cashewnoten" {
			t.Errorf("expected the cashew mention, got %+v", mention)
		}
		if draft.TotalTime != 900 || draft.Yield != 2 {
			t.Errorf("expected totalTime 900 and yield 2, got %d and %d", draft.TotalTime, draft.Yield)
		}
	})

	t.Run("Fenced JSON", func(t *testing.T) {
		draft, err := ParseDraft("```json\n" + draftResponse + "\n```")
		if err != nil {
			t.Fatalf("expected fenced draft to parse, got %v", err)
		}
		if draft.Name != "Noedels met cashewsaus" {
			t.Errorf("expected draft name, got %q", draft.Name)
		}
	})

	t.Run("Schema Violation", func(t *testing.T) {
		_, err := ParseDraft(`{"name": "Soep", "ingredients": ["1 ui"]}`)
		if err == nil {
			t.Fatal("expected an error for a draft without steps")
		}
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := ParseDraft(`{"name": `)
		if err == nil {
			t.Fatal("expected an error for malformed JSON")
		}
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	source := &models.SourceRecipe{
		URL:          "https://example.com/noedels",
		Name:         "Noedels met cashewsaus",
		Ingredients:  []string{"250 g noedels"},
		Instructions: []string{"Kook de noedels."},
	}

	prompt := buildPrompt(source)
	if !strings.Contains(prompt, "Noedels met cashewsaus") {
		t.Error("expected the prompt to embed the recipe name")
	}
	if !strings.Contains(prompt, "250 g noedels") {
		t.Error("expected the prompt to embed the ingredient lines")
	}
	if !strings.Contains(prompt, "snelheid") {
		t.Error("expected the prompt to show the notation examples")
	}
}
