package models

import (
	"github.com/enrollhub/admitd/internal/cryptox"
	"golang.org/x/sync/errgroup"
)

// CandidateDetails is the in-memory, decrypted form of a candidate's
// personal-detail record. It exists only for the duration of a single
// service call and must not be cached or persisted.
type CandidateDetails struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	City           string
	PostalCode     string
	School         string
	GraduationYear string
}

// ParentDetails is the decrypted form of a parent/guardian record.
type ParentDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// EncryptedCandidateDetails is the persisted mirror of CandidateDetails:
// every filled field is stored exclusively as ciphertext keyed to the
// recipient set computed at encryption time.
type EncryptedCandidateDetails struct {
	FirstName      EncryptedField
	LastName       EncryptedField
	Email          EncryptedField
	Phone          EncryptedField
	Address        EncryptedField
	City           EncryptedField
	PostalCode     EncryptedField
	School         EncryptedField
	GraduationYear EncryptedField
}

// EncryptedParentDetails is the persisted mirror of ParentDetails.
type EncryptedParentDetails struct {
	FirstName EncryptedField
	LastName  EncryptedField
	Email     EncryptedField
	Phone     EncryptedField
	Address   EncryptedField
}

// encryptField schedules encryption of one field. Empty plaintext leaves
// the destination unset rather than storing ciphertext of "".
func encryptField(g *errgroup.Group, plaintext string, dst *EncryptedField, recipients []string) {
	g.Go(func() error {
		if plaintext == "" {
			return nil
		}
		ct, err := cryptox.EncryptWithRecipients(plaintext, recipients)
		if err != nil {
			return err
		}
		*dst = NewEncryptedField(ct)
		return nil
	})
}

// decryptField schedules decryption of one field. Unset optional fields
// decode to the empty default.
func decryptField(g *errgroup.Group, src EncryptedField, dst *string, privateKey string) {
	g.Go(func() error {
		if !src.IsSet() {
			*dst = ""
			return nil
		}
		ct, err := src.Ciphertext()
		if err != nil {
			return err
		}
		plaintext, err := cryptox.DecryptWithPrivateKey(ct, privateKey)
		if err != nil {
			return err
		}
		*dst = plaintext
		return nil
	})
}

// NewEncryptedCandidateDetails encrypts every filled field of details for
// the recipient set. Fields are independent, so they are encrypted
// concurrently; any single failure aborts the whole batch and nothing is
// returned (all-or-nothing).
func NewEncryptedCandidateDetails(details *CandidateDetails, recipients []string) (*EncryptedCandidateDetails, error) {
	enc := &EncryptedCandidateDetails{}
	g := new(errgroup.Group)

	encryptField(g, details.FirstName, &enc.FirstName, recipients)
	encryptField(g, details.LastName, &enc.LastName, recipients)
	encryptField(g, details.Email, &enc.Email, recipients)
	encryptField(g, details.Phone, &enc.Phone, recipients)
	encryptField(g, details.Address, &enc.Address, recipients)
	encryptField(g, details.City, &enc.City, recipients)
	encryptField(g, details.PostalCode, &enc.PostalCode, recipients)
	encryptField(g, details.School, &enc.School, recipients)
	encryptField(g, details.GraduationYear, &enc.GraduationYear, recipients)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enc, nil
}

// Decrypt reverses NewEncryptedCandidateDetails with one private key.
// Any single field failure (wrong recipient set, corrupted ciphertext)
// fails the whole operation.
func (e *EncryptedCandidateDetails) Decrypt(privateKey string) (*CandidateDetails, error) {
	details := &CandidateDetails{}
	g := new(errgroup.Group)

	decryptField(g, e.FirstName, &details.FirstName, privateKey)
	decryptField(g, e.LastName, &details.LastName, privateKey)
	decryptField(g, e.Email, &details.Email, privateKey)
	decryptField(g, e.Phone, &details.Phone, privateKey)
	decryptField(g, e.Address, &details.Address, privateKey)
	decryptField(g, e.City, &details.City, privateKey)
	decryptField(g, e.PostalCode, &details.PostalCode, privateKey)
	decryptField(g, e.School, &details.School, privateKey)
	decryptField(g, e.GraduationYear, &details.GraduationYear, privateKey)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// NewEncryptedParentDetails encrypts a parent record for the recipient set,
// with the same concurrent all-or-nothing semantics as candidate details.
func NewEncryptedParentDetails(details *ParentDetails, recipients []string) (*EncryptedParentDetails, error) {
	enc := &EncryptedParentDetails{}
	g := new(errgroup.Group)

	encryptField(g, details.FirstName, &enc.FirstName, recipients)
	encryptField(g, details.LastName, &enc.LastName, recipients)
	encryptField(g, details.Email, &enc.Email, recipients)
	encryptField(g, details.Phone, &enc.Phone, recipients)
	encryptField(g, details.Address, &enc.Address, recipients)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enc, nil
}

// Decrypt reverses NewEncryptedParentDetails with one private key.
func (e *EncryptedParentDetails) Decrypt(privateKey string) (*ParentDetails, error) {
	details := &ParentDetails{}
	g := new(errgroup.Group)

	decryptField(g, e.FirstName, &details.FirstName, privateKey)
	decryptField(g, e.LastName, &details.LastName, privateKey)
	decryptField(g, e.Email, &details.Email, privateKey)
	decryptField(g, e.Phone, &details.Phone, privateKey)
	decryptField(g, e.Address, &details.Address, privateKey)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
