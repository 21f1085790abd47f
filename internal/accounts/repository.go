package accounts

import (
	"context"
	"errors"
	"fmt"

	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/tasks"
	"taskfyer/internal/domain/users"

	"gorm.io/gorm"
)

// UserRepository is the user-state capability the account flows mutate.
type UserRepository interface {
	Create(ctx context.Context, u *users.User) error
	FindByID(ctx context.Context, id uint) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*users.User, error)
	Save(ctx context.Context, u *users.User) error
	MarkVerified(ctx context.Context, id uint) error
	SetPassword(ctx context.Context, id uint, hash string) error
	List(ctx context.Context) ([]users.User, error)
	Delete(ctx context.Context, id uint) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *users.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.Internal(fmt.Errorf("create user: %w", err))
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*users.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return r.first(ctx, "google_sub = ?", sub)
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg any) (*users.User, error) {
	var u users.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	return &u, nil
}

func (r *GormUserRepository) Save(ctx context.Context, u *users.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return apperr.Internal(fmt.Errorf("save user: %w", err))
	}
	return nil
}

func (r *GormUserRepository) MarkVerified(ctx context.Context, id uint) error {
	return r.update(ctx, id, "is_verified", true)
}

func (r *GormUserRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	return r.update(ctx, id, "password", hash)
}

func (r *GormUserRepository) update(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return apperr.Internal(fmt.Errorf("update user %s: %w", column, res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("list users: %w", err))
	}
	return out, nil
}

// Delete removes the user together with the tasks they own.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&tasks.Task{}).Error; err != nil {
			return apperr.Internal(fmt.Errorf("delete user tasks: %w", err))
		}
		res := tx.Delete(&users.User{}, id)
		if res.Error != nil {
			return apperr.Internal(fmt.Errorf("delete user: %w", res.Error))
		}
		if res.RowsAffected == 0 {
			return apperr.ErrUserNotFound
		}
		return nil
	})
}
