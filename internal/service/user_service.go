package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=CREATOR APPROVER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse returns a User without exposing sensitive data (password hash)
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, apperror.Validation("Role must be CREATOR or APPROVER")
	}

	// Explicit uniqueness check; the unique index backs it up under races
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("Failed to register user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, user); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Email already registered")
			}
			return apperror.Internal("Failed to register user", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role})
		audit := &model.AuditLog{
			UserID:   &user.ID,
			Action:   model.ActionRegisterUser,
			EntityID: user.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return apperror.Internal("Failed to write audit log", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL()).Unix(),
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}

	return &TokenResponse{AccessToken: tokenString}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("User not found")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("User not found")
	}
	return toUserResponse(user), nil
}

// tokenTTL reads the access token lifetime from JWT_TTL_HOURS, default 24h.
func tokenTTL() time.Duration {
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
	}
	return 24 * time.Hour
}
