package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_credentials"
	OutcomeRateLimited = "rate_limited"
)

// LoginAttempt is one row of the login audit trail
type LoginAttempt struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	Outcome   string    `db:"outcome"`
	CreatedAt time.Time `db:"created_at"`
}
