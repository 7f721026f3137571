package models

import "time"

// Candidate is an applicant account. The private key is stored only as
// ciphertext wrapped under the candidate's login password; it is never
// persisted or transmitted in plaintext.
type Candidate struct {
	ID                   int64
	ApplicationID        string
	PasswordHash         string
	PersonalIDHash       string
	PublicKey            string
	PrivateKeyCiphertext string
	Details              EncryptedCandidateDetails
	CreatedAt            time.Time
}

// Admin is an administrator account. Admin public keys join every
// recipient set computed for candidate data.
type Admin struct {
	ID                   int64
	Login                string
	PasswordHash         string
	PublicKey            string
	PrivateKeyCiphertext string
	CreatedAt            time.Time
}

// Parent holds the encrypted parent/guardian record attached to a
// candidate.
type Parent struct {
	ID          int64
	CandidateID int64
	Details     EncryptedParentDetails
	CreatedAt   time.Time
}
