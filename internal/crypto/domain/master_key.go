package domain

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// MasterKey holds the 256-bit vault master key inside a memguard enclave.
//
// The key is encrypted at rest in process memory and is only decrypted into a
// locked buffer for the duration of a WithBytes call. It is never persisted.
type MasterKey struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// NewMasterKey seals key into a new enclave. The source slice is wiped in every case.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		Zero(key)
		return nil, ErrInvalidKeySize
	}

	return &MasterKey{enclave: memguard.NewEnclave(key)}, nil
}

// WithBytes decrypts the key into a locked buffer and passes it to fn.
//
// fn must not retain the slice: the buffer is destroyed as soon as fn returns.
func (m *MasterKey) WithBytes(fn func(key []byte) error) error {
	if m == nil {
		return ErrMasterKeyDestroyed
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.enclave == nil {
		return ErrMasterKeyDestroyed
	}

	buf, err := m.enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open master key enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Destroy drops the enclave. Later WithBytes calls fail with ErrMasterKeyDestroyed.
func (m *MasterKey) Destroy() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.enclave = nil
}

// IsDestroyed reports whether Destroy has been called.
func (m *MasterKey) IsDestroyed() bool {
	if m == nil {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enclave == nil
}
