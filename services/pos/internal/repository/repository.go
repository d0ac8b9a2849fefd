package repository

import (
	"context"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// SessionRepository holds the live checkout sessions of this process.
type SessionRepository interface {
	// Save registers a session, replacing any session with the same ID.
	Save(ctx context.Context, sess *domain.Session) error

	// Get returns the session with the given ID and marks it active.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}
