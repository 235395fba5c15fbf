// Package repository is the data-access layer. A Store wraps the single
// process-wide *gorm.DB, or a transaction opened on it, and hands out
// repositories bound to that handle.
package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus means a conditional status update matched no row: the
	// stored status was no longer the expected one.
	ErrStaleStatus = errors.New("stored status changed")
	ErrDuplicate   = errors.New("duplicate record")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn with a Store bound to one database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// DB exposes the underlying handle for health checks and ad-hoc queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

func (s *Store) Assignments() *AssignmentRepository {
	return &AssignmentRepository{db: s.db}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{db: s.db}
}

func (s *Store) Payouts() *PayoutRepository {
	return &PayoutRepository{db: s.db}
}

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func duplicateOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return errors.Wrap(err, msg)
}
