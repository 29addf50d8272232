package auth

import (
	"errors"
	"strings"

	"github.com/syedhisham/bxtrack/internal/pkg/validator"
)

// ValidateLogin normalizes the email in place and checks its format.
func ValidateLogin(req *LoginRequest) error {
	req.Email = validator.NormalizeEmail(req.Email)
	if req.Email == "" {
		return errors.New("email is required")
	}
	if !validator.IsValidEmail(req.Email) {
		return errors.New("invalid email format")
	}
	return nil
}

// DisplayName falls back to the local part of the address when Google
// returns no name.
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
