package models

import "fmt"

// SourceRecipe is the scraped representation of a recipe page, before
// translation. Ingredients are canonical single-line texts with quantity and
// unit embedded ("200 g cashewnoten"), never split into fields. Times are in
// seconds; Yield is the serving count, zero when the page does not state one.
type SourceRecipe struct {
	URL          string   `json:"url" validate:"required,url"`
	Name         string   `json:"name" validate:"required"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Ingredients  []string `json:"ingredients" validate:"required,min=1"`
	Instructions []string `json:"instructions" validate:"required,min=1"`
	TotalTime    int      `json:"totalTime,omitempty" validate:"min=0"`
	PrepTime     int      `json:"prepTime,omitempty" validate:"min=0"`
	Yield        int      `json:"yield,omitempty" validate:"min=0"`
}

// Validate checks that the scrape produced enough material to translate.
func (r *SourceRecipe) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid source recipe: %w", err)
	}
	return nil
}

// TentativeAnnotation is an annotation as proposed by the translator. Its
// position is a claim, not a fact: language models routinely miscount
// character offsets, so only the payload fields are trusted downstream.
// Ingredient carries the canonical line the translator believes it refers to,
// Mention the surface text it claims appears in the step.
type TentativeAnnotation struct {
	Kind       AnnotationKind `json:"type"`
	Position   Position       `json:"position"`
	Setting    *Setting       `json:"setting,omitempty"`
	Ingredient string         `json:"ingredient,omitempty"`
	Mention    string         `json:"mention,omitempty"`
}

// DraftStep is one instruction step of a draft, with unverified annotations
// in the translator's emission order.
type DraftStep struct {
	Text        string                `json:"text" validate:"required"`
	Annotations []TentativeAnnotation `json:"annotations,omitempty"`
}

// RecipeDraft is the translator's output: a recipe converted to appliance
// notation whose annotation positions still need to be resolved against the
// step texts before the platform will accept them.
type RecipeDraft struct {
	Name        string      `json:"name" validate:"required"`
	Ingredients []string    `json:"ingredients" validate:"required,min=1"`
	Steps       []DraftStep `json:"steps" validate:"required,min=1,dive"`
	TotalTime   int         `json:"totalTime,omitempty" validate:"min=0"`
	PrepTime    int         `json:"prepTime,omitempty" validate:"min=0"`
	Yield       int         `json:"yield,omitempty" validate:"min=0"`
	SourceURL   string      `json:"sourceUrl,omitempty"`
}

// Validate checks the draft before reconciliation.
func (d *RecipeDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid draft: %w", err)
	}
	return nil
}

// InstructionStep is a fully resolved step as accepted by the recipe platform:
// text plus annotations whose positions are guaranteed to address it.
type InstructionStep struct {
	Text        string       `json:"text" validate:"required"`
	Annotations []Annotation `json:"annotations"`
}

// RecipeImage references an uploaded image asset on the platform's asset host.
type RecipeImage struct {
	AssetID   string `json:"assetId" validate:"required"`
	Extension string `json:"extension,omitempty"`
	Owned     bool   `json:"platformOwned"`
}

// RecipePatch carries partial updates for a created recipe. Nil and empty
// fields are omitted from the request body and left untouched server-side.
type RecipePatch struct {
	Name         *string           `json:"name,omitempty"`
	TotalTime    *int              `json:"totalTime,omitempty"`
	PrepTime     *int              `json:"prepTime,omitempty"`
	Yield        *int              `json:"yield,omitempty"`
	Ingredients  []string          `json:"ingredients,omitempty"`
	Instructions []InstructionStep `json:"instructions,omitempty"`
	Image        *RecipeImage      `json:"image,omitempty"`
	SourceHint   *string           `json:"sourceHint,omitempty"`
}

// Validate checks the patch before it is sent: at least one field must be
// present, and every annotation must address its step text without overlap.
func (p *RecipePatch) Validate() error {
	if p.Name == nil && p.TotalTime == nil && p.PrepTime == nil && p.Yield == nil &&
		len(p.Ingredients) == 0 && len(p.Instructions) == 0 && p.Image == nil && p.SourceHint == nil {
		return fmt.Errorf("empty patch")
	}
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("recipe name cannot be blank")
	}
	if p.Image != nil {
		if err := validate.Struct(p.Image); err != nil {
			return fmt.Errorf("invalid image reference: %w", err)
		}
	}
	for i, step := range p.Instructions {
		if step.Text == "" {
			return fmt.Errorf("step %d has no text", i+1)
		}
		length := len([]rune(step.Text))
		for j, ann := range step.Annotations {
			if err := ann.Validate(); err != nil {
				return fmt.Errorf("step %d annotation %d: %w", i+1, j+1, err)
			}
			if ann.Position.End() > length {
				return fmt.Errorf("step %d annotation %d exceeds text bounds", i+1, j+1)
			}
			for _, other := range step.Annotations[:j] {
				if ann.Position.Overlaps(other.Position) {
					return fmt.Errorf("step %d has overlapping annotations", i+1)
				}
			}
		}
	}
	return nil
}

// RecipeRecord is the platform's representation of a created recipe, returned
// by create and update calls.
type RecipeRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Locale     string `json:"locale,omitempty"`
	TotalTime  int    `json:"totalTime,omitempty"`
	PrepTime   int    `json:"prepTime,omitempty"`
	Yield      int    `json:"yield,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}
