package services

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

var (
	ErrWeakPassword             = errors.New("weak password")
	ErrPasswordTooLong          = errors.New("password too long")
	ErrPasswordChangeIncomplete = errors.New("password change incomplete")
	ErrCurrentPasswordInvalid   = errors.New("current password invalid")
	ErrPasswordUnchanged        = errors.New("new password equals current password")
)

type passwordClass uint8

const (
	passwordHasUpper passwordClass = 1 << iota
	passwordHasLower
	passwordHasDigit

	passwordRequiredClasses = passwordHasUpper | passwordHasLower | passwordHasDigit
)

// ValidatePasswordStrength requires MinPasswordLength runes with at least one
// upper-case letter, one lower-case letter and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}

	var classes passwordClass
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			classes |= passwordHasUpper
		case unicode.IsLower(char):
			classes |= passwordHasLower
		case unicode.IsDigit(char):
			classes |= passwordHasDigit
		}
	}
	if classes&passwordRequiredClasses != passwordRequiredClasses {
		return ErrWeakPassword
	}
	return nil
}

// ValidatePasswordChange checks a settings password change against the
// stored hash. Inputs are trimmed the same way registration trims them.
func ValidatePasswordChange(passwordHash string, currentPassword string, newPassword string, confirmPassword string) error {
	current := strings.TrimSpace(currentPassword)
	next := strings.TrimSpace(newPassword)
	if current == "" || next == "" || strings.TrimSpace(confirmPassword) == "" {
		return ErrPasswordChangeIncomplete
	}
	if next != strings.TrimSpace(confirmPassword) {
		return ErrAuthPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(current)) != nil {
		return ErrCurrentPasswordInvalid
	}
	if next == current {
		return ErrPasswordUnchanged
	}
	return ValidatePasswordStrength(next)
}
