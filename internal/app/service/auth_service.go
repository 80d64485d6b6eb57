package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"github.com/jchoi/storefront-backend/pkg/redis"
	"github.com/jchoi/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and a
	// wrong password alike, so login failures do not leak which one it
	// was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailAlreadyExists is returned on a duplicate registration
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrUserNotFound is returned when a profile lookup misses
	ErrUserNotFound = errors.New("user not found")
)

type AuthService interface {
	Register(name, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(id uint, name, email, password *string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   *config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg *config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Register(name, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		if isDuplicateKeyError(err) {
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtCfg.Secret, s.jwtCfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, token, nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login rejected", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtCfg.Secret, s.jwtCfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

// Logout blacklists the presented token for the remainder of its
// lifetime. Without Redis configured this is a no-op and the token
// simply ages out.
func (s *authService) Logout(ctx context.Context, token string) error {
	if !redis.Enabled() {
		return nil
	}

	claims, err := util.ValidateToken(token, s.jwtCfg.Secret)
	if err != nil {
		// Already invalid or expired, nothing to revoke
		return nil
	}

	remaining := tokenTTL(claims)
	if remaining <= 0 {
		return nil
	}
	return redis.BlacklistToken(ctx, token, remaining)
}

// tokenTTL is how much longer the token stays valid. The blacklist
// entry only needs to live that long.
func tokenTTL(claims *util.Claims) time.Duration {
	return time.Until(claims.ExpiresAt.Time)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(id uint, name, email, password *string) (*model.User, error) {
	patch := repository.UserPatch{Name: name}
	if email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*email))
		patch.Email = &normalized
	}
	if password != nil {
		hash, err := util.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if err := s.userRepo.UpdateFields(id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if isDuplicateKeyError(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.userRepo.FindByID(id)
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
