package models

import "fmt"

// Position identifies a substring of an instruction step as a half-open
// character range. Offset and Length count Unicode characters, not bytes,
// because the platform's editor addresses step text by character.
type Position struct {
	Offset int `json:"offset" validate:"min=0"`
	Length int `json:"length" validate:"min=1"`
}

// End returns the exclusive end of the range.
func (p Position) End() int {
	return p.Offset + p.Length
}

// Overlaps reports whether two ranges share at least one character.
func (p Position) Overlaps(o Position) bool {
	return p.Offset < o.End() && p.End() > o.Offset
}

// AnnotationKind discriminates the annotation payload on the wire.
type AnnotationKind string

const (
	// KindSetting marks an appliance-setting annotation (time, temperature, speed).
	// The wire name is the platform's own shorthand for the setting triple.
	KindSetting AnnotationKind = "tts"
	// KindIngredient marks an inline reference to one recipe ingredient.
	KindIngredient AnnotationKind = "ingredient"
)

// Setting holds the appliance parameters referenced by a setting annotation.
// Time is a duration in seconds. Speed is a level between "0.5" and "10", kept
// as a string because the platform renders it verbatim. Temperature is either
// a Celsius number rendered as a string or the literal "varoma"; empty means
// no heating. Reverse flags counter-rotation of the blade.
type Setting struct {
	Time        int    `json:"time" validate:"min=1"`
	Speed       string `json:"speed" validate:"required"`
	Temperature string `json:"temperature,omitempty"`
	Reverse     bool   `json:"reverse,omitempty"`
}

// IngredientRef points an annotation at one line of the recipe's ingredient list.
type IngredientRef struct {
	Text string `json:"text" validate:"required"`
}

// Annotation ties a payload to the exact substring of step text it describes.
// Exactly one of Setting or Ingredient is set, matching Kind.
type Annotation struct {
	Kind       AnnotationKind `json:"type"`
	Position   Position       `json:"position"`
	Setting    *Setting       `json:"setting,omitempty"`
	Ingredient *IngredientRef `json:"ingredient,omitempty"`
}

// Validate checks structural validity of the annotation: a known kind, a
// positive-length position, and a payload that matches the kind.
func (a *Annotation) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid annotation: %w", err)
	}
	switch a.Kind {
	case KindSetting:
		if a.Setting == nil || a.Ingredient != nil {
			return fmt.Errorf("setting annotation must carry exactly a setting payload")
		}
	case KindIngredient:
		if a.Ingredient == nil || a.Setting != nil {
			return fmt.Errorf("ingredient annotation must carry exactly an ingredient payload")
		}
	default:
		return fmt.Errorf("unknown annotation kind %q", a.Kind)
	}
	return nil
}
