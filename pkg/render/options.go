package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the session state.
type RenderOptions struct {
	// Locale selects the catalogue the Translator reads from (e.g. "es-MX").
	Locale string
	// Translator resolves message keys. When nil, views render unchanged.
	Translator Translator
	// OnMissing decides the string used when a key has no translation. The
	// default falls back to the untranslated text.
	OnMissing MissingTranslationHandler
	// Hidden fields are emitted as hidden inputs alongside the form.
	Hidden []HiddenField
}
