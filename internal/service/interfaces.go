// Package service defines the interfaces shared between the persistence layer
// and the code that drives it.
package service

import (
	"context"

	"github.com/Veraticus/bookkeeper/internal/storage"
)

// Repository is the contract for persisting one record type.
// storage.Repository satisfies it.
type Repository[T any] interface {
	Add(ctx context.Context, rec *T) (int64, error)
	Get(ctx context.Context, pk int64) (*T, error)
	GetAll(ctx context.Context, filter storage.Filter) ([]T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, pk int64) error
	Upsert(ctx context.Context, rec *T, merge func(existing *T, incoming *T), keys ...string) (int64, error)
	Count(ctx context.Context, filter storage.Filter) (int, error)
}

var _ Repository[struct{}] = (*storage.Repository[struct{}])(nil)
