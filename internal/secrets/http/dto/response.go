package dto

import (
	"time"

	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// StatusOK is the status value of every successful response.
const StatusOK = "ok"

// StatusResponse is the body of operations that return nothing else.
type StatusResponse struct {
	Status string `json:"status"`
}

// SecretResponse represents a secret in API responses.
// SECURITY: Secret contains plaintext and is only set on get.
type SecretResponse struct {
	Status    string    `json:"status"`
	Path      string    `json:"path"`
	Version   uint      `json:"version"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSecretsResponse is a page of readable secret paths.
type ListSecretsResponse struct {
	Status string   `json:"status"`
	Items  []string `json:"items"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
	Total  int      `json:"total"`
}

// KeysResponse lists the visible children of a directory. Directories end with "/".
type KeysResponse struct {
	Status string   `json:"status"`
	Path   string   `json:"path"`
	Keys   []string `json:"keys"`
}

// MapSecretToPutResponse converts a stored secret to a response without its value.
func MapSecretToPutResponse(secret *secretsDomain.Secret) SecretResponse {
	return SecretResponse{
		Status:    StatusOK,
		Path:      secret.Path,
		Version:   secret.Version,
		CreatedAt: secret.CreatedAt,
		UpdatedAt: secret.UpdatedAt,
	}
}

// MapSecretToGetResponse converts a decrypted secret to a response carrying its value.
// The caller still zeroes secret.Plaintext after the response is written.
func MapSecretToGetResponse(secret *secretsDomain.Secret) SecretResponse {
	response := MapSecretToPutResponse(secret)
	response.Secret = string(secret.Plaintext)
	return response
}

// MapPathsToListResponse builds a page from the full readable listing.
func MapPathsToListResponse(page []string, offset, limit, total int) ListSecretsResponse {
	if page == nil {
		page = []string{}
	}
	return ListSecretsResponse{
		Status: StatusOK,
		Items:  page,
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}
}

// MapKeysToResponse builds a keys response, never encoding a null list.
func MapKeysToResponse(path string, keys []string) KeysResponse {
	if keys == nil {
		keys = []string{}
	}
	return KeysResponse{
		Status: StatusOK,
		Path:   path,
		Keys:   keys,
	}
}
