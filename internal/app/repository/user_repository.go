package repository

import (
	"errors"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserPatch carries the optional fields of a profile update
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the patch carries no fields
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil
}

func (p UserPatch) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		updates["password_hash"] = *p.PasswordHash
	}
	return updates
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdateFields(id uint, patch UserPatch) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
				"user_id": id,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateFields(id uint, patch UserPatch) error {
	updates := patch.updates()
	if len(updates) == 0 {
		return nil
	}

	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": id,
		"fields":  len(updates),
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update user in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
