package domain

// VaultState is the seal state of the vault master key.
type VaultState string

const (
	// Sealed is the initial state: no master key has been derived.
	Sealed VaultState = "sealed"

	// Unsealed means the master key is available until the process exits or Seal is called.
	Unsealed VaultState = "unsealed"
)
