package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"routegraph/dashboard/internal/constants"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names, as the forms know them
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type fieldMessage struct {
	field   string
	message string
}

// fieldMessages overrides the generic wording for a failing field path,
// whatever tag failed.
var fieldMessages = map[string]fieldMessage{
	"rating":                 {"rating", "rating must be greater than 0"},
	"coordinates.existingId": {"coordinates", "pick existing coordinates or enter x and y"},
	"from.existingId":        {"from", "pick a location or enter y and z"},
	"to.existingId":          {"to", "pick a location or enter y and z"},
	"fromId":                 {"locations", "both From and To locations must be selected"},
	"toId":                   {"locations", "both From and To locations must be selected"},
	"email":                  {"email", constants.MsgEmailRequired},
	"token":                  {"token", constants.MsgResetTokenMissing},
	"newPassword":            {"newPassword", constants.MsgPasswordTooShort},
	"ConfirmPassword":        {"confirmPassword", constants.MsgPasswordsDiffer},
}

func describe(fe validator.FieldError) fieldMessage {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	if m, ok := fieldMessages[path]; ok {
		return m
	}
	leaf := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fieldMessage{path, leaf + " is required"}
	case "gt":
		return fieldMessage{path, leaf + " must be greater than " + fe.Param()}
	case "min":
		return fieldMessage{path, leaf + " must be at least " + fe.Param() + " characters"}
	}
	return fieldMessage{path, leaf + " is invalid"}
}

func validationErrors(s interface{}) (validator.ValidationErrors, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	return verrs, nil
}

// checkFields validates s against its struct tags and collects one message
// per form field.
func checkFields(s interface{}) error {
	verrs, err := validationErrors(s)
	if err != nil || len(verrs) == 0 {
		return err
	}
	errs := FieldErrors{}
	for _, fe := range verrs {
		m := describe(fe)
		if _, seen := errs[m.field]; !seen {
			errs[m.field] = m.message
		}
	}
	return errs
}

// checkFirst validates s and reports only the first failing field, in
// declaration order.
func checkFirst(s interface{}) error {
	verrs, err := validationErrors(s)
	if err != nil || len(verrs) == 0 {
		return err
	}
	return ValidationError(describe(verrs[0]).message)
}
