package domain

import (
	"context"
	"time"
)

// ContentAPI is the REST backend the forms submit to.
type ContentAPI interface {
	Login(ctx context.Context, c LoginCredentials) (AuthPayload, error)
	CreateEstablishment(ctx context.Context, token string, data EstablishmentData, img Image) error
}

// SessionStore persists auth payloads by session id.
type SessionStore interface {
	Get(ctx context.Context, id string) (AuthPayload, bool, error)
	Set(ctx context.Context, id string, auth AuthPayload, ttl time.Duration) error
	Del(ctx context.Context, id string) error
}

// Session is the per-browser auth context handed down to the app services.
// SetAuth is the only way auth state changes.
type Session interface {
	ID() string
	Token() string
	SetAuth(ctx context.Context, auth AuthPayload) error
}
