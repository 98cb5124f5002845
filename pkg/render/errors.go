package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

const termsField = "terms"

// ErrorMapping splits messages into field-level and form-level groups keyed
// by field name.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// ErrorsFromView collects the inline field errors and queued notices of a
// view.
func ErrorsFromView(view View) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for _, field := range view.Fields {
		if field.Status != StatusError {
			continue
		}
		if messages := normalizeMessages([]string{field.Error}); len(messages) > 0 {
			mapping.Fields[string(field.Name)] = messages
		}
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(view.Notices)
	return mapping
}

// MapErrorPayload folds an externally produced error payload onto the signup
// field names. Keys may be JSON pointers ("/email") or dotted and bracketed
// paths ("body.phone[0]"); request wrappers and indexes are skipped. Keys that
// name no field become form-level errors.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping.Fields = make(map[string][]string)
	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		if field, ok := fieldFromPath(key); ok {
			mapping.Fields[field] = append(mapping.Fields[field], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

var pathWrappers = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

// fieldFromPath returns the field named by the first meaningful segment of
// path.
func fieldFromPath(path string) (string, bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return strings.ContainsRune("#$/.[]", r)
	})
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if _, wrapper := pathWrappers[strings.ToLower(segment)]; wrapper {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if strings.EqualFold(segment, termsField) {
			return termsField, true
		}
		if name, err := model.ParseFieldName(segment); err == nil {
			return string(name), true
		}
		return "", false
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
