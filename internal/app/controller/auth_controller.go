package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/internal/app/service"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
	"github.com/jchoi/storefront-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// Register handles POST /users/register
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	user, token, err := ctrl.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
			return
		}
		apperrors.HandleError(c, err, "user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /users/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized,
				apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		apperrors.HandleError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Logout handles POST /users/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	token, ok := middleware.GetToken(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
		apperrors.HandleError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile handles GET /users/profile
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.HandleError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PUT /users/profile
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUpdate):
			apperrors.BadRequest(c, apperrors.ValidationEmptyUpdate, "No fields to update")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		default:
			apperrors.HandleError(c, err, "user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
