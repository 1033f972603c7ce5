// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

// UserService manages the operator accounts that may use the ledger.
type UserService struct {
	db *gorm.DB
}

type CreateUserRequest struct {
	Username    string          `json:"username" validate:"notblank,max=50"`
	DisplayName string          `json:"display_name,omitempty" validate:"max=100"`
	Password    string          `json:"password" validate:"required,min=6"`
	Role        models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin operator"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Admins    int64 `json:"admins"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// List pages through accounts, optionally only those with the given status.
func (s *UserService) List(ctx context.Context, params utils.PaginationParams, status models.UserStatus) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "username", "last_login_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	username := strings.TrimSpace(req.Username)
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, ErrUsernameTaken
	}

	role := req.Role
	if role == "" {
		role = models.UserRoleOperator
	}
	user := &models.User{
		Username:    username,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        role,
		Status:      models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateStatus suspends or reactivates an account. Suspended users can no
// longer log in; tokens already issued stay valid until they expire.
func (s *UserService) UpdateStatus(ctx context.Context, actorID, userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if actorID == userID {
		return nil, ErrSelfSuspension
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = req.Status
	if err := s.db.WithContext(ctx).Model(user).Update("status", req.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserService) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{}
	counts := []struct {
		into  *int64
		where string
		arg   interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.Active, "status = ?", models.UserStatusActive},
		{&stats.Suspended, "status = ?", models.UserStatusSuspended},
		{&stats.Admins, "role = ?", models.UserRoleAdmin},
	}
	for _, c := range counts {
		query := s.db.WithContext(ctx).Model(&models.User{})
		if c.where != "" {
			query = query.Where(c.where, c.arg)
		}
		if err := query.Count(c.into).Error; err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	}
	return stats, nil
}
