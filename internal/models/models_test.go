package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPositionOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want bool
	}{
		{"disjoint", Position{Offset: 0, Length: 5}, Position{Offset: 5, Length: 3}, false},
		{"identical", Position{Offset: 2, Length: 4}, Position{Offset: 2, Length: 4}, true},
		{"partial", Position{Offset: 0, Length: 5}, Position{Offset: 4, Length: 3}, true},
		{"contained", Position{Offset: 1, Length: 10}, Position{Offset: 3, Length: 2}, true},
		{"adjacent before", Position{Offset: 10, Length: 2}, Position{Offset: 8, Length: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %+v and %+v", tt.a, tt.b)
			}
		})
	}
}

func TestAnnotationValidate(t *testing.T) {
	t.Run("valid setting annotation", func(t *testing.T) {
		ann := Annotation{
			Kind:     KindSetting,
			Position: Position{Offset: 12, Length: 18},
			Setting:  &Setting{Time: 30, Speed: "10"},
		}
		if err := ann.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("valid ingredient annotation", func(t *testing.T) {
		ann := Annotation{
			Kind:       KindIngredient,
			Position:   Position{Offset: 0, Length: 11},
			Ingredient: &IngredientRef{Text: "200 g cashewnoten"},
		}
		if err := ann.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("kind payload mismatch", func(t *testing.T) {
		ann := Annotation{
			Kind:       KindSetting,
			Position:   Position{Offset: 0, Length: 5},
			Ingredient: &IngredientRef{Text: "zout"},
		}
		if err := ann.Validate(); err == nil {
			t.Error("expected error for setting annotation without setting payload")
		}
	})

	t.Run("zero length rejected", func(t *testing.T) {
		ann := Annotation{
			Kind:     KindSetting,
			Position: Position{Offset: 3, Length: 0},
			Setting:  &Setting{Time: 60, Speed: "2"},
		}
		if err := ann.Validate(); err == nil {
			t.Error("expected error for zero-length position")
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		ann := Annotation{Kind: "timer", Position: Position{Offset: 0, Length: 1}}
		if err := ann.Validate(); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestAnnotationWireShape(t *testing.T) {
	ann := Annotation{
		Kind:     KindSetting,
		Position: Position{Offset: 12, Length: 18},
		Setting:  &Setting{Time: 30, Speed: "10"},
	}

	data, err := json.Marshal(ann)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	payload := string(data)
	if !strings.Contains(payload, `"type":"tts"`) {
		t.Errorf("expected tts discriminator in %s", payload)
	}
	if strings.Contains(payload, "ingredient") {
		t.Errorf("setting annotation must not carry an ingredient field: %s", payload)
	}
}

func TestRecipePatchValidate(t *testing.T) {
	t.Run("empty patch rejected", func(t *testing.T) {
		patch := &RecipePatch{}
		if err := patch.Validate(); err == nil {
			t.Error("expected error for empty patch")
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		patch := &RecipePatch{Name: Ptr("")}
		if err := patch.Validate(); err == nil {
			t.Error("expected error for blank name")
		}
	})

	t.Run("annotation beyond text bounds rejected", func(t *testing.T) {
		patch := &RecipePatch{
			Instructions: []InstructionStep{{
				Text: "Meng alles",
				Annotations: []Annotation{{
					Kind:       KindIngredient,
					Position:   Position{Offset: 8, Length: 10},
					Ingredient: &IngredientRef{Text: "alles"},
				}},
			}},
		}
		if err := patch.Validate(); err == nil {
			t.Error("expected error for out-of-bounds annotation")
		}
	})

	t.Run("overlapping annotations rejected", func(t *testing.T) {
		patch := &RecipePatch{
			Instructions: []InstructionStep{{
				Text: "Meng alles: 30 sec/snelheid 10",
				Annotations: []Annotation{
					{
						Kind:     KindSetting,
						Position: Position{Offset: 12, Length: 18},
						Setting:  &Setting{Time: 30, Speed: "10"},
					},
					{
						Kind:       KindIngredient,
						Position:   Position{Offset: 15, Length: 3},
						Ingredient: &IngredientRef{Text: "zout"},
					},
				},
			}},
		}
		if err := patch.Validate(); err == nil {
			t.Error("expected error for overlapping annotations")
		}
	})

	t.Run("bounds measured in characters not bytes", func(t *testing.T) {
		// "crème fraîche" is 13 characters but 15 bytes
		patch := &RecipePatch{
			Instructions: []InstructionStep{{
				Text: "crème fraîche",
				Annotations: []Annotation{{
					Kind:       KindIngredient,
					Position:   Position{Offset: 0, Length: 13},
					Ingredient: &IngredientRef{Text: "crème fraîche"},
				}},
			}},
		}
		if err := patch.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil for character-measured span", err)
		}
	})

	t.Run("well-formed patch accepted", func(t *testing.T) {
		patch := &RecipePatch{
			Name:        Ptr("Cashewnotenpasta"),
			Yield:       Ptr(4),
			Ingredients: []string{"200 g cashewnoten", "snufje zout"},
			Instructions: []InstructionStep{{
				Text: "Meng alles: 30 sec/snelheid 10",
				Annotations: []Annotation{{
					Kind:     KindSetting,
					Position: Position{Offset: 12, Length: 18},
					Setting:  &Setting{Time: 30, Speed: "10"},
				}},
			}},
		}
		if err := patch.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestPersistedImportValidate(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		imp := NewPersistedImport(1, "https://example.com/recipes/pasta", "r-123", "Pasta")
		if err := imp.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing source url", func(t *testing.T) {
		imp := NewPersistedImport(1, "", "r-123", "Pasta")
		if err := imp.Validate(); err == nil {
			t.Error("expected error for missing source URL")
		}
	})

	t.Run("missing recipe id", func(t *testing.T) {
		imp := NewPersistedImport(1, "https://example.com/recipes/pasta", "", "Pasta")
		if err := imp.Validate(); err == nil {
			t.Error("expected error for missing recipe id")
		}
	})
}

func TestSessionCredentialComplete(t *testing.T) {
	tests := []struct {
		name string
		cred SessionCredential
		want bool
	}{
		{"both present", SessionCredential{AuthToken: "tok", ProxySession: "sess"}, true},
		{"missing token", SessionCredential{ProxySession: "sess"}, false},
		{"missing session", SessionCredential{AuthToken: "tok"}, false},
		{"empty", SessionCredential{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}
