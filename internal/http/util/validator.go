package util

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body returned for a request that fails validation.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors"`
}

// FieldError is a single validation failure.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Validator wraps go-playground/validator with json field names and the
// custom tags used by the API.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a ready validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := registerValidations(v, customValidations); err != nil {
		panic(err)
	}

	return &Validator{validator: v}
}

// Validate returns nil when s is valid and a client-facing description of
// every failing field otherwise.
func (v *Validator) Validate(s any) *ErrorResponse {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ErrorResponse{Error: "validation failed", Errors: []FieldError{{Msg: err.Error()}}}
	}

	response := &ErrorResponse{Error: "validation failed", Errors: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		response.Errors = append(response.Errors, FieldError{
			Field: fieldPath(fe),
			Msg:   errorMessage(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return response
}

// fieldPath drops the top-level struct name from the namespace, so nested
// batch entries read as "links[3].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func errorMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, param)
	case "httpurl":
		return fmt.Sprintf("%s must be an http or https URL", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s failed on %s", field, tag)
	}
}

type customValidation struct {
	tag string
	fn  validator.Func
}

var customValidations = []customValidation{
	{tag: "httpurl", fn: func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return false
		}
		return u.Scheme == "http" || u.Scheme == "https"
	}},
	{tag: "notblank", fn: func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}},
}

func registerValidations(v *validator.Validate, defs []customValidation) error {
	for _, d := range defs {
		if err := v.RegisterValidation(d.tag, d.fn); err != nil {
			return fmt.Errorf("register %q validation: %w", d.tag, err)
		}
	}
	return nil
}
