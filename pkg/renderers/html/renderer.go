// Package html renders a signup view as a server-side HTML page using pongo2
// templates. Messages are sanitised with bluemonday before they reach the
// template; theme tokens from go-theme become CSS custom properties.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-signup/pkg/render"
)

// Name is the renderer identifier.
const Name = "html"

const defaultTitle = "Create Account"

// Option configures the HTML renderer.
type Option func(*Renderer)

// WithTemplatesFS overrides the template bundle. The bundle must contain the
// template named by WithTemplate (signup.tpl by default).
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.templates = files
		}
	}
}

// WithTemplate selects the page template by name.
func WithTemplate(name string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.templateName = trimmed
		}
	}
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			r.title = trimmed
		}
	}
}

// WithRenderOptions sets the locale, translator and hidden inputs applied to
// every render.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(r *Renderer) {
		r.options = opts
	}
}

// WithTheme applies a manifest and variant.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(r *Renderer) {
		r.theme = ThemeConfig(manifest, variant)
	}
}

// WithThemeSelector resolves name and variant through selector when the
// renderer is built.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// Renderer implements render.Renderer for HTML output.
type Renderer struct {
	engine       *engine
	templates    fs.FS
	templateName string
	title        string
	policy       *bluemonday.Policy
	theme        *theme.RendererConfig
	options      render.RenderOptions

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a renderer over the embedded templates.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		templates:    TemplatesFS(),
		templateName: TemplateName,
		title:        defaultTitle,
		policy:       bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.selector != nil {
		selection, err := r.selector.Select(r.themeName, r.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("html: select theme %q: %w", r.themeName, err)
		}
		if selection != nil {
			r.theme = ThemeConfig(selection.Manifest, selection.Variant)
		}
	}

	eng, err := newEngine(r.templates, ".tpl")
	if err != nil {
		return nil, err
	}
	r.engine = eng
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws view through the page template.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("html: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.engine.render(r.templateName, r.page(view))
}

type page struct {
	Title string    `json:"title"`
	Lang  string    `json:"lang"`
	Form  formView  `json:"form"`
	Theme themeView `json:"theme"`
}

type formView struct {
	State         string            `json:"state"`
	Hidden        []hiddenView      `json:"hidden,omitempty"`
	Fields        []fieldView       `json:"fields"`
	TermsAccepted bool              `json:"terms_accepted"`
	Button        render.ButtonView `json:"button"`
	Popup         popupView         `json:"popup"`
	Notices       []string          `json:"notices,omitempty"`
}

type fieldView struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Type          string `json:"type"`
	Value         string `json:"value,omitempty"`
	Status        string `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
	Notice        string `json:"notice,omitempty"`
	StrengthTier  string `json:"strength_tier,omitempty"`
	StrengthLabel string `json:"strength_label,omitempty"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type popupView struct {
	Visible bool   `json:"visible"`
	Message string `json:"message,omitempty"`
}

func (r *Renderer) page(view render.View) page {
	view = render.Localize(view, r.options)
	form := formView{
		State:         string(view.State),
		Fields:        make([]fieldView, 0, len(view.Fields)),
		TermsAccepted: view.TermsAccepted,
		Button:        view.Button,
		Popup: popupView{
			Visible: view.Popup.Visible,
			Message: r.sanitize(view.Popup.Message),
		},
	}
	for _, field := range view.Fields {
		fv := fieldView{
			ID:     string(field.Name),
			Label:  field.Label,
			Type:   render.FieldInputType(field.Name),
			Value:  field.Value,
			Status: string(field.Status),
			Error:  r.sanitize(field.Error),
			Notice: r.sanitize(field.Notice),
		}
		if field.Strength != nil {
			fv.StrengthTier = string(field.Strength.Tier)
			fv.StrengthLabel = field.Strength.Label
		}
		form.Fields = append(form.Fields, fv)
	}
	for _, hidden := range r.options.Hidden {
		if hidden.Name == "" {
			continue
		}
		form.Hidden = append(form.Hidden, hiddenView{Name: hidden.Name, Value: hidden.Value})
	}
	for _, notice := range view.Notices {
		if cleaned := r.sanitize(notice); cleaned != "" {
			form.Notices = append(form.Notices, cleaned)
		}
	}

	return page{
		Title: r.title,
		Lang:  lang(r.options.Locale),
		Form:  form,
		Theme: buildThemeView(r.theme),
	}
}

func (r *Renderer) sanitize(message string) string {
	return strings.TrimSpace(r.policy.Sanitize(message))
}

func lang(locale string) string {
	if locale = strings.TrimSpace(locale); locale == "" {
		return "en"
	}
	return locale
}
