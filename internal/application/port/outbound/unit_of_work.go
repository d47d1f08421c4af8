package outbound

import (
	"context"
)

// RepositoryProvider exposes the repositories bound to the active transaction.
type RepositoryProvider interface {
	Student() StudentRepository
}

// UnitOfWork runs fn atomically. The provider passed to fn is bound to the
// transaction; returning an error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(provider RepositoryProvider) error) error
}
