package utils

import (
	"errors"
	"fmt"

	"authdemo/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
	DemoName     = "Demo User"
	DemoUserID   = "1"
)

// DemoDirectory knows exactly one account. The password is kept as a bcrypt hash.
type DemoDirectory struct {
	email        string
	passwordHash string
	profile      models.Identity
}

func NewDemoDirectory() (*DemoDirectory, error) {
	hash, err := HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing demo password: %w", err)
	}
	return &DemoDirectory{
		email:        DemoEmail,
		passwordHash: hash,
		profile: models.Identity{
			ID:    DemoUserID,
			Email: DemoEmail,
			Name:  DemoName,
		},
	}, nil
}

// DemoEmail is shown on the login page as a hint.
func (d *DemoDirectory) DemoEmail() string {
	return d.email
}

// Authenticate returns the demo identity when both fields match exactly. A wrong
// email and a wrong password produce the same error.
func (d *DemoDirectory) Authenticate(email, password string) (models.Identity, error) {
	passwordOK := CheckPasswordHash(password, d.passwordHash)
	if email != d.email || !passwordOK {
		return models.Identity{}, ErrInvalidCredentials
	}
	return d.profile, nil
}
