package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// Translator resolves key for locale. args are applied the way the
// implementation sees fit (MapTranslator uses fmt.Sprintf).
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated. args[0] carries {"default": fallback} when a fallback exists.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is passed to the missing handler when no Translator is
// configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// ErrMissingTranslation reports a key absent from a catalogue.
var ErrMissingTranslation = errors.New("render: missing translation")

// Message keys.
const (
	keyIdleButton    = "signup.button.idle"
	keyBusyButton    = "signup.button.busy"
	keySuccessNotice = "signup.success"
)

// FieldLabelKey is the catalogue key of a field label.
func FieldLabelKey(name model.FieldName) string {
	return "signup.field." + string(name) + ".label"
}

// FieldErrorKey is the catalogue key of a field's validation message.
func FieldErrorKey(name model.FieldName) string {
	return "signup.field." + string(name) + ".error"
}

// FieldNoticeKey is the catalogue key of a field's success notice.
func FieldNoticeKey(name model.FieldName) string {
	return "signup.field." + string(name) + ".notice"
}

// StrengthKey is the catalogue key of a strength tier label.
func StrengthKey(tier model.StrengthTier) string {
	return "signup.strength." + string(tier)
}

// MapTranslator is an in-memory catalogue keyed by locale, then message key.
// A regional locale ("es-MX") falls back to its language ("es").
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		if msg, ok := m[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return nil
	}
	chain := []string{locale}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		chain = append(chain, locale[:i])
	}
	return chain
}

// Localize returns a copy of view with labels and messages translated.
// Blocking notices have no stable key, so their text is the key.
//
// Translation failures are routed through opts.OnMissing; the default keeps
// the untranslated text.
func Localize(view View, opts RenderOptions) View {
	if opts.Translator == nil && opts.OnMissing == nil {
		return view
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, opts.Translator, onMissing)
	}

	out := view
	out.Fields = make([]FieldView, len(view.Fields))
	for i, field := range view.Fields {
		field.Label = tr(FieldLabelKey(field.Name), field.Label)
		if field.Error != "" {
			field.Error = tr(FieldErrorKey(field.Name), field.Error)
		}
		if field.Notice != "" {
			field.Notice = tr(FieldNoticeKey(field.Name), field.Notice)
		}
		if field.Strength != nil {
			strength := *field.Strength
			strength.Label = tr(StrengthKey(strength.Tier), strength.Label)
			field.Strength = &strength
		}
		out.Fields[i] = field
	}

	if view.Button.Disabled {
		out.Button.Label = tr(keyBusyButton, view.Button.Label)
	} else {
		out.Button.Label = tr(keyIdleButton, view.Button.Label)
	}
	if view.Popup.Message != "" {
		out.Popup.Message = tr(keySuccessNotice, view.Popup.Message)
	}
	if len(view.Notices) > 0 {
		out.Notices = make([]string, len(view.Notices))
		for i, notice := range view.Notices {
			out.Notices[i] = tr(notice, notice)
		}
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 {
		if params, ok := args[0].(map[string]any); ok {
			if fallback, ok := params["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}
