package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/99minutos/project-registry/internal/core/ports"
)

// Store is the gorm implementation of ports.Store. A Store created by WithTx
// wraps the transaction handle, so every repository it hands out joins it.
type Store struct {
	db *gorm.DB
}

var _ ports.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Identities() ports.IdentityRepository {
	return &IdentityRepository{db: s.db}
}

func (s *Store) Projects() ports.ProjectRepository {
	return &ProjectRepository{db: s.db}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
