// Package scrape extracts source recipes from recipe web pages.
//
// Pages are read structured-data-first: most recipe sites embed a schema.org
// Recipe node as JSON-LD, which carries cleaner text than the rendered
// markup. CSS selectors for the common recipe plugins fill whatever the
// structured data lacks.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// DefaultUserAgent identifies the importer to source sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CookiedooFiller/1.0)"

// maxPageBytes caps how much of a recipe page is read.
const maxPageBytes = 5 << 20

// Error reports a failed scrape of one page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scrape error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("scrape error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Scraper fetches recipe pages and extracts [models.SourceRecipe] values.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

// New builds a scraper with the default user agent.
func New() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  DefaultUserAgent,
	}
}

// Scrape fetches pageURL and extracts its recipe. The scrape fails only when
// the page yields no name, no ingredients or no instructions; optional
// fields are best effort.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*models.SourceRecipe, error) {
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	recipe := &models.SourceRecipe{URL: pageURL}
	if node, ok := findRecipeNode(doc); ok {
		fillFromJSONLD(recipe, node)
	}
	fillFromMarkup(recipe, doc)

	if err := recipe.Validate(); err != nil {
		return nil, &Error{URL: pageURL, Message: "page does not contain a parseable recipe", Cause: err}
	}
	return recipe, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "bad url", Cause: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "request failed", Cause: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{URL: pageURL, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse page", Cause: err}
	}
	return doc, nil
}

// findRecipeNode locates the first schema.org Recipe node among the page's
// JSON-LD scripts, looking through @graph wrappers and top-level arrays.
func findRecipeNode(doc *goquery.Document) (map[string]any, bool) {
	var node map[string]any
	var found bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		node, found = recipeFromLD(v)
		return !found
	})
	return node, found
}

func recipeFromLD(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t, true
		}
		if graph, ok := t["@graph"]; ok {
			return recipeFromLD(graph)
		}
	case []any:
		for _, item := range t {
			if node, ok := recipeFromLD(item); ok {
				return node, true
			}
		}
	}
	return nil, false
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func fillFromJSONLD(recipe *models.SourceRecipe, node map[string]any) {
	recipe.Name = cleanText(ldText(node["name"]))
	recipe.ImageURL = ldImage(node["image"])

	recipe.Ingredients = ldStrings(node["recipeIngredient"])
	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = ldStrings(node["ingredients"])
	}
	recipe.Instructions = ldInstructions(node["recipeInstructions"])

	recipe.TotalTime = parseISODuration(ldText(node["totalTime"]))
	recipe.PrepTime = parseISODuration(ldText(node["prepTime"]))
	if recipe.TotalTime == 0 {
		recipe.TotalTime = recipe.PrepTime + parseISODuration(ldText(node["cookTime"]))
	}
	recipe.Yield = parseYield(node["recipeYield"])
}

// Selector lists for the markup fallback, most specific first. The wprm
// classes belong to WP Recipe Maker, by far the most common recipe plugin on
// the source sites.
var (
	ingredientSelectors = []string{
		".wprm-recipe-ingredient",
		`[itemprop="recipeIngredient"]`,
		".recipe-ingredients li",
		".ingredients li",
	}
	instructionSelectors = []string{
		".wprm-recipe-instruction-text",
		`[itemprop="recipeInstructions"] li`,
		".recipe-instructions li",
		".instructions li",
	}
	nameSelectors = []string{
		"h1.recipe-title",
		".wprm-recipe-name",
		"h1",
	}
)

// fillFromMarkup fills only the fields the structured data left empty.
func fillFromMarkup(recipe *models.SourceRecipe, doc *goquery.Document) {
	if recipe.Name == "" {
		if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && cleanText(content) != "" {
			recipe.Name = cleanText(content)
		}
	}
	if recipe.Name == "" {
		for _, sel := range nameSelectors {
			if text := cleanText(doc.Find(sel).First().Text()); text != "" {
				recipe.Name = text
				break
			}
		}
	}

	if recipe.ImageURL == "" {
		if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
			recipe.ImageURL = strings.TrimSpace(content)
		}
	}

	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = selectTexts(doc, ingredientSelectors)
	}
	if len(recipe.Instructions) == 0 {
		recipe.Instructions = selectTexts(doc, instructionSelectors)
	}
}

func selectTexts(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var out []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := cleanText(s.Text()); text != "" {
				out = append(out, text)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// ldText extracts a single string from a JSON-LD value that may be a string
// or an array of strings.
func ldText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := ldText(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// ldStrings flattens a JSON-LD value into a list of cleaned strings.
func ldStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := cleanText(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			out = append(out, ldStrings(item)...)
		}
	case map[string]any:
		out = append(out, ldStrings(t["text"])...)
	}
	return out
}

// ldInstructions flattens recipeInstructions, which sites publish as a
// string, a string array, HowToStep objects or HowToSection groups.
func ldInstructions(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := cleanText(line); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, ldInstructions(item)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			out = append(out, ldInstructions(items)...)
			break
		}
		if s := cleanText(ldText(t["text"])); s != "" {
			out = append(out, s)
		} else if s := cleanText(ldText(t["name"])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ldImage extracts an image URL from a string, array or ImageObject value.
func ldImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := ldImage(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return ldImage(t["url"])
	}
	return ""
}

var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts an ISO 8601 duration such as "PT1H30M" to
// seconds, returning 0 for anything unparseable.
func parseISODuration(s string) int {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	atoi := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}
	return atoi(m[1])*86400 + atoi(m[2])*3600 + atoi(m[3])*60 + atoi(m[4])
}

var yieldNumber = regexp.MustCompile(`\d+`)

// parseYield reads a serving count out of recipeYield, which sites publish
// as a number, "4 personen" style text, or arrays of either.
func parseYield(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if m := yieldNumber.FindString(t); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []any:
		for _, item := range t {
			if n := parseYield(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

// cleanText collapses runs of whitespace, including non-breaking spaces,
// into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
