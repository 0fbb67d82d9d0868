package auth

import (
	"fmt"
	"strings"
)

// MinPasswordLength is the shortest password accepted at signup
const MinPasswordLength = 6

// ValidationError is a client-side form error; it blocks the request and is
// shown next to the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SignupForm is what the signup command collects
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form the same way before anything is sent
func (f SignupForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" || strings.TrimSpace(f.Password) == "" {
		return &ValidationError{Message: "All fields are required"}
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}
	if len(f.Password) < MinPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength)}
	}
	return nil
}

func validateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &ValidationError{Message: "Email and password are required"}
	}
	return nil
}
