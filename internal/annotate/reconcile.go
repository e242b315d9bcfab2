package annotate

import (
	"sort"
	"strings"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
)

// Report tallies what reconciliation kept, recovered and discarded. It is
// informational: a low coverage recipe still produces a valid patch.
type Report struct {
	TotalIngredients   int
	CoveredIngredients int
	Backfilled         int
	DroppedSettings    int
	DroppedMentions    int
	VerbatimMentions   []string
}

// Coverage returns the fraction of ingredients referenced by at least one
// annotation. A recipe without ingredients counts as fully covered.
func (r *Report) Coverage() float64 {
	if r.TotalIngredients == 0 {
		return 1
	}
	return float64(r.CoveredIngredients) / float64(r.TotalIngredients)
}

// Dropped returns how many proposed annotations were discarded.
func (r *Report) Dropped() int {
	return r.DroppedSettings + r.DroppedMentions
}

// Reconcile turns a translated draft into the patch the recipe platform
// will accept. Step text is normalized, every annotation position is
// recomputed from the text, and ingredients no annotation covers are
// backfilled where the text mentions them. Proposals that cannot be placed
// are dropped, never shipped with a position the text does not support.
func Reconcile(draft *models.RecipeDraft) (*models.RecipePatch, *Report) {
	rep := &Report{TotalIngredients: len(draft.Ingredients)}

	steps := make([]models.InstructionStep, len(draft.Steps))
	covered := make(map[string]bool)
	for i, ds := range draft.Steps {
		text := NormalizeStepText(ds.Text)
		anns := resolveStep(text, ds.Annotations, draft.Ingredients, rep)
		steps[i] = models.InstructionStep{Text: text, Annotations: anns}
		for _, a := range anns {
			if a.Kind == models.KindIngredient {
				covered[coverageKey(a.Ingredient.Text)] = true
			}
		}
	}

	for _, ing := range draft.Ingredients {
		key := coverageKey(ing)
		if key == "" || covered[key] {
			continue
		}
		if backfillIngredient(steps, strings.TrimSpace(ing)) {
			covered[key] = true
			rep.Backfilled++
		}
	}

	for _, ing := range draft.Ingredients {
		if covered[coverageKey(ing)] {
			rep.CoveredIngredients++
		}
	}

	for i := range steps {
		sortAnnotations(steps[i].Annotations)
	}

	patch := &models.RecipePatch{
		Ingredients:  draft.Ingredients,
		Instructions: steps,
	}
	if draft.Name != "" {
		patch.Name = models.Ptr(draft.Name)
	}
	if draft.TotalTime > 0 {
		patch.TotalTime = models.Ptr(draft.TotalTime)
	}
	if draft.PrepTime > 0 {
		patch.PrepTime = models.Ptr(draft.PrepTime)
	}
	if draft.Yield > 0 {
		patch.Yield = models.Ptr(draft.Yield)
	}
	if draft.SourceURL != "" {
		patch.SourceHint = models.Ptr(draft.SourceURL)
	}
	return patch, rep
}

// resolveStep recomputes annotation positions for one step. Setting
// annotations are paired with scanned notation spans in order of appearance
// and placed first; ingredient mentions are then located around them, so a
// mention can never cut into a notation span.
func resolveStep(text string, proposals []models.TentativeAnnotation, ingredients []string, rep *Report) []models.Annotation {
	var anns []models.Annotation

	spans := ScanSettings(text)
	next := 0
	for _, prop := range proposals {
		if prop.Kind != models.KindSetting {
			continue
		}
		if prop.Setting == nil || next >= len(spans) {
			rep.DroppedSettings++
			continue
		}
		anns = append(anns, models.Annotation{
			Kind:     models.KindSetting,
			Position: spans[next].Position,
			Setting:  prop.Setting,
		})
		next++
	}

	cursors := make(map[string]int)
	for _, prop := range proposals {
		if prop.Kind != models.KindIngredient {
			continue
		}
		canonical, verbatim := bindIngredient(prop, ingredients)
		if canonical == "" {
			rep.DroppedMentions++
			continue
		}
		key := coverageKey(canonical)
		from := cursors[key]
		placed := false
		for {
			m, ok := FindMention(text, prop.Mention, canonical, from)
			if !ok {
				break
			}
			if overlapsAny(anns, m.Position) {
				from = m.Position.Offset + 1
				continue
			}
			anns = append(anns, models.Annotation{
				Kind:       models.KindIngredient,
				Position:   m.Position,
				Ingredient: &models.IngredientRef{Text: canonical},
			})
			cursors[key] = m.Position.End()
			placed = true
			break
		}
		if !placed {
			rep.DroppedMentions++
		} else if verbatim {
			rep.VerbatimMentions = append(rep.VerbatimMentions, canonical)
		}
	}

	sortAnnotations(anns)
	return anns
}

// bindIngredient decides which ingredient text an annotation should carry:
// the claimed canonical line when it is on the list, the best-scoring list
// entry otherwise, and the raw surface text as a last resort. The second
// return is true when the surface text was kept verbatim.
func bindIngredient(prop models.TentativeAnnotation, ingredients []string) (string, bool) {
	claimed := strings.TrimSpace(prop.Ingredient)
	mention := strings.TrimSpace(prop.Mention)

	if claimed != "" {
		for _, ing := range ingredients {
			if strings.EqualFold(strings.TrimSpace(ing), claimed) {
				return strings.TrimSpace(ing), false
			}
		}
	}

	seed := claimed
	if seed == "" {
		seed = mention
	}
	if seed == "" {
		return "", false
	}
	if best, _ := ScoreMention(seed, ingredients); best != "" {
		return strings.TrimSpace(best), false
	}

	if mention != "" {
		return mention, true
	}
	return claimed, true
}

// backfillIngredient finds a free span for an uncovered ingredient, trying
// each step in order and skipping spans that would overlap an existing
// annotation.
func backfillIngredient(steps []models.InstructionStep, ingredient string) bool {
	for si := range steps {
		from := 0
		for {
			m, ok := FindMention(steps[si].Text, "", ingredient, from)
			if !ok {
				break
			}
			if overlapsAny(steps[si].Annotations, m.Position) {
				from = m.Position.Offset + 1
				continue
			}
			steps[si].Annotations = append(steps[si].Annotations, models.Annotation{
				Kind:       models.KindIngredient,
				Position:   m.Position,
				Ingredient: &models.IngredientRef{Text: ingredient},
			})
			return true
		}
	}
	return false
}

func overlapsAny(anns []models.Annotation, pos models.Position) bool {
	for _, a := range anns {
		if a.Position.Overlaps(pos) {
			return true
		}
	}
	return false
}

func sortAnnotations(anns []models.Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].Position.Offset < anns[j].Position.Offset
	})
}

func coverageKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
