package services

import (
	"errors"
	"strings"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/internal/utils"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db    *gorm.DB
	email *EmailService
}

func NewUserService(db *gorm.DB, email *EmailService) *UserService {
	return &UserService{db: db, email: email}
}

type ProfileUpdateRequest struct {
	Name string `json:"name"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type UserCreateRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// UpdateProfile changes mutable profile fields of the user.
func (s *UserService) UpdateProfile(userID uint, req *ProfileUpdateRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(userID uint, req *PasswordChangeRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user not found")
		}
		return err
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		return response.NewForbidden("invalid current password")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.db.Save(&user).Error
}

// ListByRole returns active users with the given global role.
func (s *UserService) ListByRole(role string) ([]models.User, error) {
	role = strings.ToUpper(role)
	if !models.ValidRole(role) {
		return nil, response.NewValidation("invalid role: " + role)
	}

	var users []models.User
	if err := s.db.Where("role = ?", role).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create provisions an account on behalf of an admin: the user gets a
// generated temporary password by mail and any email-only invites waiting
// for this address are linked to the new account.
func (s *UserService) Create(req *UserCreateRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToUpper(req.Role)
	if !models.ValidRole(role) {
		return nil, response.NewValidation("invalid role: " + req.Role)
	}

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("email is already in use")
	}

	tempPassword, err := utils.GenerateTempPassword(10)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     req.Name,
		Email:    email,
		Password: hash,
		Role:     role,
		Status:   models.UserStatusActive,
		AuthType: "local",
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return response.NewConflict("email is already in use")
			}
			return err
		}
		return LinkEmailInvites(tx, &user)
	})
	if err != nil {
		return nil, err
	}

	if s.email != nil {
		go s.email.SendWelcomeEmail(user.Email, user.Name, tempPassword)
	}
	return &user, nil
}

// GetByID returns a user by primary key.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}
