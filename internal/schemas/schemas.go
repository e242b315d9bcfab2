// Package schemas validates JSON documents crossing trust boundaries: recipe
// platform responses and translator output. Schemas are embedded so a schema
// drift shows up as a typed validation error instead of a zero-valued struct.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Lukasvo/cookiedoo-filler/internal/shared"

	"embed"
)

// Schema names, one per embedded definition.
const (
	CreatedRecipe   = "created_recipe"
	RecipeRecord    = "recipe_record"
	RecipeDraft     = "recipe_draft"
	UploadSignature = "upload_signature"
	UploadResult    = "upload_result"
)

//go:embed *.json
var schemaFS embed.FS

var (
	mu       sync.Mutex
	compiled = make(map[string]*gojsonschema.Schema)
)

// FieldError is one schema violation at a specific document path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports why a document does not match its schema.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: document does not match schema", e.Schema)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrValidation
}

// Validate checks doc against the named schema and returns a
// *ValidationError describing every violation, or nil when the document
// conforms.
func Validate(name string, doc []byte) error {
	schema, err := load(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{
			Schema: name,
			Fields: []FieldError{{Field: "(document)", Message: err.Error()}},
		}
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Schema: name}
	for _, re := range result.Errors() {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return verr
}

func load(name string) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := compiled[name]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %q: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}
