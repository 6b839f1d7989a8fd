package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/db"
	"github.com/terraincognita07/glowlog/internal/security"
	"github.com/terraincognita07/glowlog/internal/services"
)

const temporaryPasswordAlphabet = security.Readable

// SessionRevoker drops every refresh token a user holds.
type SessionRevoker interface {
	RevokeAllSessions(ctx context.Context, userID uint) error
}

type ResetPasswordOptions struct {
	Database *gorm.DB
	Sessions SessionRevoker
	Email    string
	Out      io.Writer
	HashCost int
}

// RunResetPasswordCommand replaces the user's password with a temporary one
// and flags the account so the client asks for a new password after login.
func RunResetPasswordCommand(ctx context.Context, options ResetPasswordOptions) (string, error) {
	if strings.TrimSpace(options.Email) == "" {
		return "", errors.New("email is required")
	}
	normalizedEmail, err := services.NormalizeEmail(options.Email)
	if err != nil {
		return "", fmt.Errorf("invalid email address: %w", err)
	}
	if options.Database == nil {
		return "", errors.New("database is required")
	}

	users := db.NewUserRepository(options.Database)
	user, err := users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %s not found", normalizedEmail)
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := generateTemporaryPassword(12)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}

	hashCost := options.HashCost
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash temporary password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return "", fmt.Errorf("update user password: %w", err)
	}

	if options.Sessions != nil {
		if err := options.Sessions.RevokeAllSessions(ctx, user.ID); err != nil {
			return "", fmt.Errorf("revoke sessions: %w", err)
		}
	}

	if options.Out != nil {
		fmt.Fprintln(options.Out, "Password reset successful")
		fmt.Fprintf(options.Out, "Temporary password: %s\n", temporaryPassword)
		fmt.Fprintln(options.Out, "User must change password on next login.")
	}
	return temporaryPassword, nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	// The generated value must still pass the password strength policy.
	for {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
