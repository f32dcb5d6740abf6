// Package repo holds the gorm plumbing shared by the domain repositories.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/loftstay/loftstay-backend/pkg/db"
)

// Base binds a connection, or a transaction, to the table of model T.
type Base[T any] struct {
	db *gorm.DB
}

func NewBase[T any](conn *gorm.DB) Base[T] {
	return Base[T]{db: conn}
}

// DB scopes the connection to ctx.
func (b Base[T]) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a Base issuing queries on tx. A nil tx keeps the current connection.
func (b Base[T]) Bind(tx *gorm.DB) Base[T] {
	if tx == nil {
		return b
	}
	return Base[T]{db: tx}
}

func (b Base[T]) Create(ctx context.Context, row *T) error {
	if row == nil {
		return errors.New("row is required")
	}
	return b.DB(ctx).Create(row).Error
}

func (b Base[T]) Save(ctx context.Context, row *T) error {
	if row == nil {
		return errors.New("row is required")
	}
	return b.DB(ctx).Save(row).Error
}

// FindByID returns gorm.ErrRecordNotFound when no row has id.
func (b Base[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return b.first(b.DB(ctx), id)
}

// FindByIDForUpdate also holds the row lock until the transaction ends.
func (b Base[T]) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error) {
	return b.first(ForUpdate(b.DB(ctx)), id)
}

func (b Base[T]) first(query *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	if err := query.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteByID reports how many rows were removed.
func (b Base[T]) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	res := b.DB(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}

// ForUpdate adds FOR UPDATE on postgres. SQLite serialises writers itself
// and has no such clause.
func ForUpdate(query *gorm.DB) *gorm.DB {
	if !db.IsPostgres(query) {
		return query
	}
	return query.Clauses(clause.Locking{Strength: "UPDATE"})
}
