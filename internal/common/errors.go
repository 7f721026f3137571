// Package common defines shared constants and sentinel errors used across
// the admissions portal core. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Registration errors.
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidApplicationID = errors.New("invalid application id")

	// Session lifecycle errors.
	ErrExpiredSession = errors.New("session expired")
	ErrInvalidToken   = errors.New("invalid token")

	// Crypto errors. Internal detail never reaches clients beyond a
	// generic message.
	ErrCryptoEncryptFailed = errors.New("encryption failed")
	ErrCryptoDecryptFailed = errors.New("decryption failed")

	// Encrypted field errors.
	ErrFieldNotSet = errors.New("encrypted field not set")

	// Portfolio errors.
	ErrIncompletePortfolio = errors.New("incomplete portfolio")
	ErrPortfolioNotFound   = errors.New("portfolio not found")
)
