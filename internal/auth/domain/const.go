// Package domain defines the path authorization model.
//
// Every known identity has one policy made of two glob pattern sets, one granting read
// and one granting write. Identities without a policy are denied everything.
package domain

// Capability defines the operations a policy can grant on a path.
type Capability string

const (
	// ReadCapability allows get, list and listKeys.
	ReadCapability Capability = "read"

	// WriteCapability allows put and delete.
	WriteCapability Capability = "write"
)
