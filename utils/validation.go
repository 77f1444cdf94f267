package utils

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("Please enter a valid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("Password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.New("Password must be at least 8 characters")
	}
	return nil
}

// ValidateCredential runs the shape checks on a login submission. It never looks at
// stored credentials. An empty result means the submission is well formed.
func ValidateCredential(email, password string) FieldErrors {
	errs := FieldErrors{}
	if err := ValidateEmail(email); err != nil {
		errs["email"] = err.Error()
	}
	if err := ValidatePassword(password); err != nil {
		errs["password"] = err.Error()
	}
	return errs
}
