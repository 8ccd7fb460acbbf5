package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// userRepository 用户仓储实现(GORM)
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 并发注册时预检可能都通过,由唯一索引兜底;冲突后回查确定是哪个字段
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			if taken, _ := r.ExistsByEmail(ctx, u.Email); taken {
				return user.ErrEmailDuplicate
			}
			return user.ErrUsernameDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to create user")
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(conn(ctx, r.db).Where("username = ?", username))
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(conn(ctx, r.db).Where("username = ?", username))
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(conn(ctx, r.db).Where("email = ?", email))
}

func (r *userRepository) first(query *gorm.DB) (*user.User, error) {
	var model UserModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query user")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Model(&UserModel{}).Count(&count).Error; err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query user")
	}
	return count > 0, nil
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		FullName:  m.FullName,
		Role:      user.Role(m.Role),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
