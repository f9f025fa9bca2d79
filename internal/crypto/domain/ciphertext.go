package domain

// Ciphertext is the output of one AEAD encryption: sealed bytes with the tag
// appended, plus the random nonce used for that single call.
type Ciphertext struct {
	Data  []byte
	Nonce []byte
}

// IsZero reports whether both fields are empty.
func (c Ciphertext) IsZero() bool {
	return len(c.Data) == 0 && len(c.Nonce) == 0
}
