package repositories

import "context"

// UnitOfWork runs fn in one transaction. Repositories called with the ctx passed to fn
// join it, so a duplicate check and its insert commit or roll back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
