package tokens

import (
	"context"
	"errors"
	"fmt"

	model "taskfyer/internal/domain/tokens"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("token not found")

// Store persists hashed tokens. Implementations must make Upsert atomic with
// respect to FindByHash: a reader sees either the old or the new record.
type Store interface {
	Upsert(ctx context.Context, t *model.Token) error
	FindByHash(ctx context.Context, hash string, purpose model.Purpose) (*model.Token, error)
	DeleteByHash(ctx context.Context, hash string, purpose model.Purpose) error
	DeleteForUser(ctx context.Context, userID uint) error
	Count(ctx context.Context, userID uint, purpose model.Purpose) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Upsert replaces the (user_id, purpose) row in a single statement, so there is
// no window in which the pair has no row.
func (s *GormStore) Upsert(ctx context.Context, t *model.Token) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret_hash", "created_at", "expires_at"}),
		}).
		Create(t).Error
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (s *GormStore) FindByHash(ctx context.Context, hash string, purpose model.Purpose) (*model.Token, error) {
	var t model.Token
	err := s.db.WithContext(ctx).
		Where("secret_hash = ? AND purpose = ?", hash, purpose).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

func (s *GormStore) DeleteByHash(ctx context.Context, hash string, purpose model.Purpose) error {
	err := s.db.WithContext(ctx).
		Where("secret_hash = ? AND purpose = ?", hash, purpose).
		Delete(&model.Token{}).Error
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteForUser(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Token{}).Error; err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	return nil
}

func (s *GormStore) Count(ctx context.Context, userID uint, purpose model.Purpose) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Token{}).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return n, nil
}
