package loader

import (
	"errors"
	"fmt"

	validator "github.com/pb33f/libopenapi-validator"
	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
)

// ValidationError lists the meta-schema violations found in a document.
type ValidationError struct {
	Errors []*validatorErrors.ValidationError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "document is not a valid OpenAPI document"
	}
	return fmt.Sprintf("document is not a valid OpenAPI document (%d problems): %s", len(e.Errors), e.Details()[0])
}

// Details returns one line per problem, schema failures included.
func (e *ValidationError) Details() []string {
	var out []string
	for _, ve := range e.Errors {
		line := ve.Message
		if ve.Reason != "" {
			line += ": " + ve.Reason
		}
		out = append(out, line)
		for _, sf := range ve.SchemaValidationErrors {
			if sf == nil {
				continue
			}
			out = append(out, "  - "+sf.Reason)
		}
	}
	return out
}

// Validate checks the document against the OpenAPI meta-schema for its version.
func Validate(result *Result) error {
	v, errs := validator.NewValidator(result.Document)
	if len(errs) > 0 {
		return fmt.Errorf("creating validator: %w", errors.Join(errs...))
	}

	valid, problems := v.ValidateDocument()
	if valid {
		return nil
	}
	return &ValidationError{Errors: problems}
}
