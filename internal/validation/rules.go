// Package validation holds the jellydator/validation rules shared by the request DTOs.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/vault/internal/errors"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// WrapValidationError turns a rule failure into an ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace rejects leading or trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank rejects strings that are empty after trimming.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// SecretPath accepts a path that can be stored. Empty strings are left to Required.
var SecretPath = pathRule("validation_secret_path")

// PathPrefix accepts a listing prefix or directory: empty, or a storable path.
var PathPrefix = pathRule("validation_path_prefix")

func pathRule(code string) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError(code+"_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		if err := secretsDomain.ValidatePath(s); err != nil {
			return validation.NewError(code, "must be a relative path without '..' segments")
		}
		return nil
	})
}
