package services

import (
	"errors"
	"net/mail"
	"strings"
)

// RFC 5321 path limit.
const maxEmailLength = 254

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrEmailInvalid           = errors.New("email invalid")
)

// NormalizeEmail lower-cases and trims raw and accepts only a bare address.
// Display-name forms such as "Mina <mina@example.com>" are rejected so the
// stored value is always the address users log in with.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return "", ErrEmailInvalid
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// NormalizeCredentialsInput returns the normalized email and trimmed password
// used by register and login.
func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email, err := NormalizeEmail(emailRaw)
	if err != nil {
		return "", "", ErrAuthCredentialsInvalid
	}
	password := strings.TrimSpace(passwordRaw)
	if password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}
