package render

import (
	"context"
	"encoding/json"
)

// JSONRenderer writes the view as indented JSON.
type JSONRenderer struct{}

// NewJSONRenderer returns the JSON renderer.
func NewJSONRenderer() JSONRenderer {
	return JSONRenderer{}
}

func (JSONRenderer) Name() string { return "json" }

func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload := struct {
		View
		Errors ErrorMapping `json:"errors"`
	}{View: view, Errors: ErrorsFromView(view)}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
