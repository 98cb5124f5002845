package tui

import (
	"io"

	"github.com/goliatone/go-signup/pkg/render"
)

// Theme captures optional prefixes the renderer applies when printing
// messages. Keep minimal to avoid coupling the prompt loop to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme is used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "✔ ", ErrorPrefix: "✘ "}
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints info lines.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		r.out = out
	}
}

// WithLabels overrides button and popup labels.
func WithLabels(labels render.Labels) Option {
	return func(r *Renderer) {
		r.labels = labels
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
