// Package protect turns a plaintext message into an opaque protected-data
// handle through a Protector and back, tracking the message state machine.
package protect

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// PayloadField is the field the plaintext is stored under
	PayloadField = "message"

	// DatasetName labels every protected artifact
	DatasetName = "Secret Message"

	// FieldTypeString is the only schema type in use
	FieldTypeString = "string"
)

var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrProtectionFailed   = errors.New("protection failed")
	ErrRetrievalFailed    = errors.New("retrieval failed")
	ErrSchemaMismatch     = errors.New("schema mismatch")

	// Precondition reasons
	ErrEmptyMessage       = errors.New("message is empty")
	ErrMissingHandle      = errors.New("no protected handle")
	ErrWalletNotConnected = errors.New("wallet not connected")

	errEmptyHandle     = errors.New("protector returned an empty handle")
	errNothingRevealed = errors.New("protector revealed no value")
)

// Payload is the structured data submitted for protection
type Payload map[string]string

// Schema declares the expected shape of a protected artifact: field to type
type Schema map[string]string

// MessageSchema is the shape of a protected message
func MessageSchema() Schema {
	return Schema{PayloadField: FieldTypeString}
}

// Matches reports whether p has exactly the fields of s, all strings
func (s Schema) Matches(p Payload) bool {
	if len(s) != len(p) {
		return false
	}
	for field, typ := range s {
		if _, ok := p[field]; !ok || typ != FieldTypeString {
			return false
		}
	}
	return true
}

// Metadata accompanies a protect request
type Metadata struct {
	Name  string
	Owner common.Address
}

type ProtectRequest struct {
	Payload  Payload
	Metadata Metadata
}

type UnprotectRequest struct {
	Handle    string
	Schema    Schema
	Requester common.Address
}

// Protector is the external protection capability
type Protector interface {
	Protect(ctx context.Context, req ProtectRequest) (string, error)
	Unprotect(ctx context.Context, req UnprotectRequest) ([]string, error)
}

// Error is a gateway failure: Kind is one of the package sentinels and Cause
// the underlying reason. errors.Is matches either.
type Error struct {
	Op    string
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// CauseMessage is the text shown to the user for this failure
func (e *Error) CauseMessage() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Cause.Error()
}
