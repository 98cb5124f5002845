package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-signup/pkg/model"
)

// FieldError is one schema violation. Field is empty for object-level errors.
type FieldError struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Validator checks snapshots against a request body schema.
type Validator struct {
	schema *openapi3.Schema
}

// NewValidator wraps s; nil selects Signup.
func NewValidator(s *openapi3.Schema) *Validator {
	if s == nil {
		s = Signup()
	}
	return &Validator{schema: s}
}

// Payload converts a snapshot into the JSON value the schema describes.
func Payload(snap model.FormSnapshot) map[string]any {
	payload := make(map[string]any, len(model.Fields())+1)
	for _, name := range model.Fields() {
		payload[string(name)] = snap.Value(name)
	}
	payload[TermsProperty] = snap.TermsAccepted
	return payload
}

// Validate returns every violation, ordered by field.
func (v *Validator) Validate(snap model.FormSnapshot) []FieldError {
	err := v.schema.VisitJSON(Payload(snap), openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var out []FieldError
	collect(err, &out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

// Validate checks snap against Signup.
func Validate(snap model.FormSnapshot) []FieldError {
	return NewValidator(nil).Validate(snap)
}

// Fields lists the distinct fields named in errs.
func Fields(errs []FieldError) []string {
	seen := make(map[string]struct{}, len(errs))
	var out []string
	for _, e := range errs {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		out = append(out, e.Field)
	}
	return out
}

func collect(err error, out *[]FieldError) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collect(inner, out)
		}
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := ""
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			field = pointer[0]
		}
		*out = append(*out, FieldError{Field: field, Reason: schemaErr.Reason})
		return
	}
	*out = append(*out, FieldError{Reason: err.Error()})
}

// FromDocument loads an OpenAPI document and returns the JSON request body
// schema of the signup operation.
func FromDocument(ctx context.Context, raw []byte) (*openapi3.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("schema: document does not contain any paths")
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || !strings.EqualFold(op.OperationID, OperationID) {
				continue
			}
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				return nil, fmt.Errorf("schema: %s has no request body", path)
			}
			media := op.RequestBody.Value.Content.Get("application/json")
			if media == nil || media.Schema == nil || media.Schema.Value == nil {
				return nil, fmt.Errorf("schema: %s has no JSON request schema", path)
			}
			return media.Schema.Value, nil
		}
	}
	return nil, fmt.Errorf("schema: operation %q not found", OperationID)
}
