package types

import (
	"context"
	"time"
)

type User struct {
	UserID    UserID
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RequestRecord struct {
	ID        string
	UserID    UserID
	Flow      Flow
	Input     string
	Outcome   Outcome
	CreatedAt time.Time
}

type RegistryStats struct {
	Users          int64
	ActiveToday    int64
	Requests       int64
	RequestsToday  int64
	FailedRequests int64
}

// UserStore is the optional registry of users who talked to the bot and
// what they asked for.
type UserStore interface {
	UpsertUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID UserID) (*User, error)
	RecordRequest(ctx context.Context, rec RequestRecord) error
	Stats(ctx context.Context) (RegistryStats, error)
}

// CooldownStore tracks the last gated request per user. Implementations
// swallow storage failures: checks fail open and writes are best effort.
type CooldownStore interface {
	// CheckCooldown returns the whole seconds left in the window, if any.
	CheckCooldown(ctx context.Context, userID UserID) (remaining int, limited bool)
	SetCooldown(ctx context.Context, userID UserID)
	// Acquire is an indivisible check-then-set for one user.
	Acquire(ctx context.Context, userID UserID) (remaining int, ok bool)
}
