// Package models defines server-side data models persisted in the database.
package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
)

// EncryptedField wraps a string that is guaranteed to hold ciphertext
// produced by recipient-set encryption, never a bare plaintext. The zero
// value is the unset state, which maps to SQL NULL and is distinct from a
// field holding ciphertext.
type EncryptedField struct {
	value string
	set   bool
}

// NewEncryptedField wraps an already-encrypted value.
func NewEncryptedField(ciphertext string) EncryptedField {
	return EncryptedField{value: ciphertext, set: true}
}

// IsSet reports whether the field holds ciphertext.
func (f EncryptedField) IsSet() bool {
	return f.set
}

// Ciphertext returns the stored ciphertext. Reading an unset field is a
// reportable error, not an empty string.
func (f EncryptedField) Ciphertext() (string, error) {
	if !f.set {
		return "", common.ErrFieldNotSet
	}
	return f.value, nil
}

// Scan implements sql.Scanner; SQL NULL maps to the unset state.
func (f *EncryptedField) Scan(src any) error {
	if src == nil {
		*f = EncryptedField{}
		return nil
	}
	switch v := src.(type) {
	case string:
		*f = EncryptedField{value: v, set: true}
		return nil
	case []byte:
		*f = EncryptedField{value: string(v), set: true}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into EncryptedField", src)
	}
}

// Value implements driver.Valuer; the unset state persists as SQL NULL.
func (f EncryptedField) Value() (driver.Value, error) {
	if !f.set {
		return nil, nil
	}
	return f.value, nil
}
