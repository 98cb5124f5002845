package render

import "github.com/goliatone/go-signup/pkg/model"

var fieldLabels = map[model.FieldName]string{
	model.FieldFirstName:       "First Name",
	model.FieldLastName:        "Last Name",
	model.FieldEmail:           "Email Address",
	model.FieldPassword:        "Password",
	model.FieldConfirmPassword: "Confirm Password",
	model.FieldPhone:           "Phone Number (optional)",
}

// FieldLabel is the human label for name.
func FieldLabel(name model.FieldName) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return string(name)
}

// FieldInputType is the HTML input type used for name.
func FieldInputType(name model.FieldName) string {
	switch name {
	case model.FieldEmail:
		return "email"
	case model.FieldPassword, model.FieldConfirmPassword:
		return "password"
	case model.FieldPhone:
		return "tel"
	default:
		return "text"
	}
}
