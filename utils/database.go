package utils

import (
	"context"
	"fmt"
	"time"

	"authdemo/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func OpenDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	config.MaxConns = 20
	config.MaxConnIdleTime = 20 * time.Second
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LoginAudit appends login attempts to the login_attempts table.
type LoginAudit struct {
	db  execer
	now func() time.Time
}

func NewLoginAudit(db execer) *LoginAudit {
	return &LoginAudit{db: db, now: time.Now}
}

const createLoginAttempts = `CREATE TABLE IF NOT EXISTS login_attempts (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL,
	ip_address TEXT NOT NULL,
	user_agent TEXT NOT NULL,
	outcome TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

func (a *LoginAudit) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, createLoginAttempts); err != nil {
		return fmt.Errorf("creating login_attempts: %w", err)
	}
	return nil
}

// RecordLogin fills in the ID and timestamp when they are unset.
func (a *LoginAudit) RecordLogin(ctx context.Context, attempt models.LoginAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = a.now().UTC()
	}

	stmt := "INSERT INTO login_attempts (id, email, ip_address, user_agent, outcome, created_at) VALUES ($1, $2, $3, $4, $5, $6);"
	_, err := a.db.Exec(ctx, stmt, attempt.ID, attempt.Email, attempt.IPAddress, attempt.UserAgent, attempt.Outcome, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording login attempt: %w", err)
	}
	return nil
}
