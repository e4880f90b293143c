package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PromptValidator checks user supplied prompt fields.
type PromptValidator struct {
	validate *validator.Validate
}

func NewPromptValidator() *PromptValidator {
	return &PromptValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateCreate checks a create payload after trimming.
func (v *PromptValidator) ValidateCreate(input *CreatePromptInput) error {
	if input == nil {
		return fmt.Errorf("prompt input cannot be nil")
	}
	if err := v.validate.Struct(input); err != nil {
		return describe(err)
	}
	if err := validatePrintable("name", input.Name); err != nil {
		return err
	}
	return nil
}

// ValidateUpdate checks the fields present in a patch.
func (v *PromptValidator) ValidateUpdate(input *UpdatePromptInput) error {
	if input == nil {
		return fmt.Errorf("prompt input cannot be nil")
	}
	if err := v.validate.Struct(input); err != nil {
		return describe(err)
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return fmt.Errorf("name cannot be empty or only whitespace")
		}
		if err := validatePrintable("name", *input.Name); err != nil {
			return err
		}
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return fmt.Errorf("description cannot be empty or only whitespace")
	}
	return nil
}

// ValidatePromptID accepts canonical UUIDs only.
func (v *PromptValidator) ValidatePromptID(id string) error {
	if id == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid prompt ID format")
	}
	return nil
}

func validatePrintable(field, value string) error {
	for _, r := range value {
		if !unicode.IsPrint(r) && r != '\n' && r != '\t' && r != '\r' {
			return fmt.Errorf("%s contains unprintable characters", field)
		}
	}
	return nil
}

func describe(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "max":
		return fmt.Errorf("%s exceeds maximum length of %s characters", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", field, fe.Tag())
	}
}
