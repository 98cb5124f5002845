// Package config loads the signup command configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/submission"
)

// Config is the full command configuration.
type Config struct {
	Submission SubmissionConfig `yaml:"submission"`
	Labels     LabelsConfig     `yaml:"labels"`
	Log        LogConfig        `yaml:"log"`
	HTML       HTMLConfig       `yaml:"html"`
}

// SubmissionConfig times the simulated submission.
type SubmissionConfig struct {
	Latency      time.Duration `yaml:"latency" validate:"gt=0"`
	DismissAfter time.Duration `yaml:"dismissAfter" validate:"gt=0"`
}

// LabelsConfig holds the user-facing strings.
type LabelsConfig struct {
	IdleButton    string `yaml:"idleButton" validate:"notblank"`
	BusyButton    string `yaml:"busyButton" validate:"notblank"`
	SuccessNotice string `yaml:"successNotice" validate:"notblank"`
	TermsNotice   string `yaml:"termsNotice" validate:"notblank"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// HTMLConfig configures the HTML renderer.
type HTMLConfig struct {
	Title        string                       `yaml:"title"`
	Locale       string                       `yaml:"locale" validate:"omitempty,bcp47_language_tag"`
	Translations map[string]map[string]string `yaml:"translations"`
	Hidden       map[string]string            `yaml:"hidden"`
	Theme        ThemeConfig                  `yaml:"theme"`
}

// ThemeConfig is an inline go-theme manifest.
type ThemeConfig struct {
	Name     string                       `yaml:"name"`
	Variant  string                       `yaml:"variant"`
	Tokens   map[string]string            `yaml:"tokens"`
	Variants map[string]map[string]string `yaml:"variants"`
}

// Default mirrors the stock behaviour: 2s latency, 4s dismissal and the stock
// labels.
func Default() Config {
	labels := render.DefaultLabels()
	return Config{
		Submission: SubmissionConfig{
			Latency:      submission.DefaultLatency,
			DismissAfter: submission.DefaultDismissDelay,
		},
		Labels: LabelsConfig{
			IdleButton:    labels.IdleButton,
			BusyButton:    labels.BusyButton,
			SuccessNotice: labels.SuccessNotice,
			TermsNotice:   submission.DefaultTermsNotice,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTML: HTMLConfig{
			Title: "Create Account",
		},
	}
}

// Parse overlays data on Default and validates the result. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path, or returns Default when path is empty.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	if err := defaultValidator.Struct(c); err != nil {
		return fmt.Errorf("config: %s", errorMessage(err))
	}
	return nil
}

// RenderLabels converts the label settings for the view state.
func (c Config) RenderLabels() render.Labels {
	return render.Labels{
		IdleButton:    c.Labels.IdleButton,
		BusyButton:    c.Labels.BusyButton,
		SuccessNotice: c.Labels.SuccessNotice,
	}
}

// SubmissionOptions converts the submission settings for the controller.
func (c Config) SubmissionOptions() []submission.Option {
	return []submission.Option{
		submission.WithLatency(c.Submission.Latency),
		submission.WithDismissDelay(c.Submission.DismissAfter),
		submission.WithTermsNotice(c.Labels.TermsNotice),
	}
}

// RenderOptions converts the locale, catalogue and hidden inputs for the HTML
// renderer.
func (c Config) RenderOptions() render.RenderOptions {
	opts := render.RenderOptions{
		Locale: c.HTML.Locale,
		Hidden: render.SortedHiddenFields(render.MergeHiddenFields(c.HTML.Hidden)),
	}
	if len(c.HTML.Translations) > 0 {
		opts.Translator = render.MapTranslator(c.HTML.Translations)
	}
	return opts
}

// Manifest builds a go-theme manifest from the inline theme, or nil when no
// theme is configured.
func (c Config) Manifest() *theme.Manifest {
	t := c.HTML.Theme
	if strings.TrimSpace(t.Name) == "" && len(t.Tokens) == 0 {
		return nil
	}
	name := t.Name
	if name == "" {
		name = "custom"
	}
	manifest := &theme.Manifest{
		Name:    name,
		Version: "1.0.0",
		Tokens:  t.Tokens,
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for variant, tokens := range t.Variants {
			manifest.Variants[variant] = theme.Variant{Tokens: tokens}
		}
	}
	return manifest
}

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func errorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.ActualTag() {
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "notblank":
			messages = append(messages, fmt.Sprintf("%s must not be blank", field))
		case "bcp47_language_tag":
			messages = append(messages, fmt.Sprintf("%s must be a BCP 47 language tag", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(messages, "; ")
}
