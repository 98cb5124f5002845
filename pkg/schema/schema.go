// Package schema publishes the signup form as an OpenAPI document and checks
// snapshots against it with kin-openapi.
//
// The schema covers what JSON Schema can express: trimmed-length and pattern
// constraints, the optional phone number and the terms flag. Password
// confirmation equality is cross-field and stays with the validation engine.
package schema

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/rules"
)

const (
	// OperationID names the signup operation in the published document.
	OperationID = "signup"
	// Path is the request path of the signup operation.
	Path = "/signup"
	// TermsProperty is the JSON property carrying the terms flag.
	TermsProperty = "terms"
)

// trimmedMinPattern matches strings whose trimmed length is at least min.
func trimmedMinPattern(min int) string {
	nonSpace := `[^` + rules.SpaceClass + `]`
	if min <= 1 {
		return nonSpace
	}
	return fmt.Sprintf(`%s[\s\S]{%d,}%s`, nonSpace, min-2, nonSpace)
}

// Signup returns the request body schema.
func Signup() *openapi3.Schema {
	name := func(title string) *openapi3.Schema {
		s := openapi3.NewStringSchema().
			WithMinLength(rules.MinNameLength).
			WithPattern(trimmedMinPattern(rules.MinNameLength))
		s.Title = title
		return s
	}

	email := openapi3.NewStringSchema().WithPattern(rules.EmailPattern)
	email.Title = "Email Address"

	password := openapi3.NewStringSchema().WithMinLength(rules.MinPasswordLength)
	password.Title = "Password"
	password.Format = "password"

	confirm := openapi3.NewStringSchema()
	confirm.Title = "Confirm Password"
	confirm.Format = "password"
	confirm.Description = "Must equal password."

	phone := openapi3.NewStringSchema().WithPattern(`^([+]?[1-9][0-9]{0,15})?$`)
	phone.Title = "Phone Number"

	terms := openapi3.NewBoolSchema().WithEnum(true)
	terms.Title = "Terms and Conditions"

	s := openapi3.NewObjectSchema().
		WithProperty(string(model.FieldFirstName), name("First Name")).
		WithProperty(string(model.FieldLastName), name("Last Name")).
		WithProperty(string(model.FieldEmail), email).
		WithProperty(string(model.FieldPassword), password).
		WithProperty(string(model.FieldConfirmPassword), confirm).
		WithProperty(string(model.FieldPhone), phone).
		WithProperty(TermsProperty, terms)
	s.Required = []string{
		string(model.FieldFirstName),
		string(model.FieldLastName),
		string(model.FieldEmail),
		string(model.FieldPassword),
		string(model.FieldConfirmPassword),
		TermsProperty,
	}
	return s
}

// Document wraps Signup in a one-operation OpenAPI document.
func Document(version string) *openapi3.T {
	if version == "" {
		version = "1.0.0"
	}

	op := openapi3.NewOperation()
	op.OperationID = OperationID
	op.Summary = "Create an account"
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(Signup()),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(201, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Account created"),
		}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Validation failed"),
		}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Signup",
			Version: version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(Path, &openapi3.PathItem{Post: op})),
	}
}
