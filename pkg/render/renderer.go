// Package render holds the presentation boundary shared by every renderer:
// the Adapter contract, an in-memory ViewState that implements it, and a
// registry of renderers that turn a View into bytes.
package render

import (
	"context"

	"github.com/goliatone/go-signup/pkg/model"
)

// Adapter is the presentation boundary the validation core talks to. It is
// the submission presenter contract plus the write side the session uses to
// store raw input.
type Adapter interface {
	Name() string

	ReadField(name model.FieldName) string
	ReadTermsAccepted() bool
	OnOutcome(outcome model.ValidationOutcome)
	OnSubmissionStateChange(state model.SubmissionState)
	ResetAllFields()
	ShowBlockingNotice(message string)

	SetField(name model.FieldName, value string)
	SetTermsAccepted(accepted bool)
}

// Renderer converts a View into a byte representation (HTML, JSON, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
