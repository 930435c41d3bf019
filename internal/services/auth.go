package services

import (
	"errors"
	"strings"
	"time"

	"github.com/bugnest/backend/internal/config"
	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/internal/utils"
	"github.com/bugnest/backend/pkg/logger"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	ldap      *LDAPService
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, ldapCfg *config.LDAPConfig, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		ldap:      NewLDAPService(ldapCfg),
		jwtConfig: jwtCfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type"` // local, ldap
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Login authenticates by email and password and issues a JWT.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user *models.User
	var err error
	switch req.AuthType {
	case "", "local":
		user, err = s.localAuth(email, req.Password)
	case "ldap":
		user, err = s.ldapAuth(email, req.Password)
	default:
		return nil, response.NewBadRequest("invalid auth type")
	}
	if err != nil {
		return nil, err
	}

	if user.Status != models.UserStatusActive {
		return nil, response.NewForbidden("account is inactive")
	}

	expireHours := s.jwtConfig.ExpireHour
	if expireHours <= 0 {
		expireHours = 24
	}
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, expireHours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(user)

	return &LoginResponse{
		Token:    token,
		User:     user,
		ExpireAt: now.Add(time.Duration(expireHours) * time.Hour),
	}, nil
}

// Register creates a self-service account. The requested role is limited
// to the non-admin roles; admins come from seeding or provisioning.
// Pending email-only invites for this address are linked to the account.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	role := models.RoleDeveloper
	if req.Role != "" {
		role = strings.ToUpper(req.Role)
	}
	if !models.ValidRole(role) || role == models.RoleAdmin {
		return nil, response.NewValidation("invalid role: " + req.Role)
	}

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("email is already in use")
	}

	hash, err := utils.HashPassword(req.Password)
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
	return &user, nil
}

func (s *AuthService) localAuth(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if user.Password == "" || !utils.CheckPassword(password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}
	return &user, nil
}

// ldapAuth binds against the directory and provisions a local shadow
// record on first login.
func (s *AuthService) ldapAuth(email, password string) (*models.User, error) {
	entry, err := s.ldap.Authenticate(email, password)
	if err != nil {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	var user models.User
	err = s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Name:     entry.Name,
			Email:    email,
			Role:     models.RoleDeveloper,
			Status:   models.UserStatusActive,
			AuthType: "ldap",
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		if err := LinkEmailInvites(s.db, &user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns the user for an authenticated request.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// SeedDefaultUsers creates one account per role on an empty database.
func (s *AuthService) SeedDefaultUsers() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Admin User", "admin@bugnest.com", "admin123", models.RoleAdmin},
		{"Manager User", "manager@bugnest.com", "manager123", models.RoleManager},
		{"Developer User", "developer@bugnest.com", "developer123", models.RoleDeveloper},
		{"Tester User", "tester@bugnest.com", "tester123", models.RoleTester},
	}

	for _, seed := range seeds {
		hash, err := utils.HashPassword(seed.password)
		if err != nil {
			return err
		}
		user := models.User{
			Name:     seed.name,
			Email:    seed.email,
			Password: hash,
			Role:     seed.role,
			Status:   models.UserStatusActive,
			AuthType: "local",
		}
		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
		logger.Infof("[Seed] created user %s", seed.email)
	}
	return nil
}
