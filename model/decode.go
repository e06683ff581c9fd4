package model

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/grovetools/cydantic/schema"
	"github.com/mitchellh/mapstructure"
)

// Validatable is implemented by model types with cross-field rules.
type Validatable interface {
	Validate() error
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Decode builds a new value of the model's type from a plain document.
// Unknown keys are rejected unless additional properties are allowed.
// Struct `validate` tags and a Validate method run after decoding.
func (m *reflectedModel) Decode(doc any, opts ExportOptions) (any, error) {
	target := reflect.New(m.typ)

	tagName := "json"
	if !opts.ByAlias {
		tagName = fieldNameTag
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target.Interface(),
		TagName:     tagName,
		ErrorUnused: !opts.AllowAdditionalProperties,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, &schema.Error{Violations: decodeViolations(err)}
	}

	if err := structValidator.Struct(target.Interface()); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			return nil, &schema.Error{Violations: fieldViolations(fieldErrs)}
		}
		return nil, fmt.Errorf("failed to validate %s: %w", m.name, err)
	}

	if v, ok := target.Interface().(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, &schema.Error{Violations: []string{fmt.Sprintf("- /: %s", err)}}
		}
	}

	return target.Elem().Interface(), nil
}

func decodeViolations(err error) []string {
	mErr, ok := err.(*mapstructure.Error)
	if !ok {
		return []string{fmt.Sprintf("- /: %s", err)}
	}
	messages := make([]string, 0, len(mErr.Errors))
	for _, e := range mErr.Errors {
		messages = append(messages, "- "+e)
	}
	sort.Strings(messages)
	return messages
}

func fieldViolations(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fmt.Sprintf("- %s: failed on '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (%s)", msg, fe.Param())
		}
		messages = append(messages, msg)
	}
	return messages
}
