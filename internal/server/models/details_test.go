package models

import (
	"errors"
	"testing"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/cryptox"
)

func newKeypair(t *testing.T) (string, string) {
	t.Helper()
	pub, priv, err := cryptox.CreateIdentity()
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	return pub, priv
}

func TestCandidateDetails_EncryptDecryptRoundTrip(t *testing.T) {
	candidatePub, candidatePriv := newKeypair(t)
	adminPub, adminPriv := newKeypair(t)

	details := &CandidateDetails{
		FirstName:      "Alice",
		LastName:       "Ozoliņa",
		Email:          "alice@example.com",
		Phone:          "+371 20000000",
		Address:        "Brīvības iela 21",
		City:           "Rīga",
		PostalCode:     "LV-1010",
		School:         "Rīgas 1. ģimnāzija",
		GraduationYear: "2026",
	}

	enc, err := NewEncryptedCandidateDetails(details, []string{candidatePub, adminPub})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// no field may leak plaintext
	if ct, err := enc.FirstName.Ciphertext(); err != nil || ct == "Alice" {
		t.Errorf("FirstName not encrypted: %q, %v", ct, err)
	}

	for name, priv := range map[string]string{"candidate": candidatePriv, "admin": adminPriv} {
		got, err := enc.Decrypt(priv)
		if err != nil {
			t.Fatalf("decrypt as %s: %v", name, err)
		}
		if *got != *details {
			t.Errorf("decrypt as %s: mismatch %+v", name, got)
		}
	}
}

func TestCandidateDetails_WrongKeyFailsWholeBatch(t *testing.T) {
	pub, _ := newKeypair(t)
	_, strangerPriv := newKeypair(t)

	enc, err := NewEncryptedCandidateDetails(&CandidateDetails{FirstName: "Alice"}, []string{pub})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	_, err = enc.Decrypt(strangerPriv)
	if !errors.Is(err, common.ErrCryptoDecryptFailed) {
		t.Errorf("expected ErrCryptoDecryptFailed, got %v", err)
	}
}

func TestCandidateDetails_UnsetFieldsStayUnset(t *testing.T) {
	pub, priv := newKeypair(t)

	enc, err := NewEncryptedCandidateDetails(&CandidateDetails{FirstName: "Alice"}, []string{pub})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if enc.LastName.IsSet() {
		t.Errorf("empty field must not produce ciphertext")
	}

	got, err := enc.Decrypt(priv)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got.FirstName != "Alice" || got.LastName != "" {
		t.Errorf("unexpected details %+v", got)
	}
}

func TestCandidateDetails_EmptyRecipientsFails(t *testing.T) {
	_, err := NewEncryptedCandidateDetails(&CandidateDetails{FirstName: "Alice"}, nil)
	if !errors.Is(err, common.ErrCryptoEncryptFailed) {
		t.Errorf("expected ErrCryptoEncryptFailed, got %v", err)
	}
}

func TestParentDetails_RoundTrip(t *testing.T) {
	pub, priv := newKeypair(t)

	details := &ParentDetails{
		FirstName: "Pēteris",
		LastName:  "Ozoliņš",
		Email:     "peteris@example.com",
	}
	enc, err := NewEncryptedParentDetails(details, []string{pub})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := enc.Decrypt(priv)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if *got != *details {
		t.Errorf("mismatch %+v", got)
	}
}
