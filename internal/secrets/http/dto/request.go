// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/vault/internal/validation"
)

// PutSecretRequest contains the parameters for storing a secret.
type PutSecretRequest struct {
	Path   string `json:"path"`
	Secret string `json:"secret"`
	// CAS, when set, is the version the stored record must have (0 for "does not exist").
	CAS *uint `json:"cas,omitempty"`
}

// Validate checks if the put secret request is valid.
func (r *PutSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.SecretPath,
		),
		validation.Field(&r.Secret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// PathRequest contains the single path parameter of get, keys and delete.
type PathRequest struct {
	Path string `json:"path"`
}

// Validate checks if the request names a valid path.
func (r *PathRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.SecretPath,
		),
	)
}

// KeysRequest contains the directory whose children are listed. An empty path lists the root.
type KeysRequest struct {
	Path string `json:"path"`
}

// Validate checks if the keys request is valid.
func (r *KeysRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, customValidation.PathPrefix),
	)
}

// ListSecretsRequest contains the prefix filter for listing secrets.
type ListSecretsRequest struct {
	Prefix string `json:"prefix"`
}

// Validate checks if the list request is valid.
func (r *ListSecretsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Prefix, customValidation.PathPrefix),
	)
}
