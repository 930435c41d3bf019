package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Key         string `json:"project_key" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"project_key"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatorName string `json:"creator_name"`
	MemberCount int64  `json:"member_count"`
	UserStatus  string `json:"user_status"`
	CreatedAt   string `json:"created_at"`
}

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Create stores a new project and makes the creator its owner: an ACCEPTED
// MANAGER membership with the owner flag set, written in the same
// transaction. The key is upper-cased and immutable afterwards since bug
// IDs embed it.
func (s *ProjectService) Create(req *CreateProjectRequest, creator *models.User) (*models.Project, error) {
	key := strings.ToUpper(strings.TrimSpace(req.Key))
	if !projectKeyPattern.MatchString(key) {
		return nil, response.NewValidation("project key must be 2-10 uppercase letters or digits, starting with a letter")
	}

	status := models.ProjectStatusActive
	if req.Status != "" {
		status = strings.ToUpper(req.Status)
	}

	project := models.Project{
		Name:        req.Name,
		Key:         key,
		Description: req.Description,
		Status:      status,
		CreatorID:   creator.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			if isUniqueViolation(err) {
				return response.NewConflict("project key already in use")
			}
			return err
		}

		now := time.Now()
		owner := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    &creator.ID,
			Role:      models.RoleManager,
			Status:    models.MemberStatusAccepted,
			IsOwner:   true,
			JoinedAt:  &now,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns the projects visible to the user: all of them for
// platform admins, otherwise the ones with an ACCEPTED membership.
func (s *ProjectService) ListForUser(user *models.User) ([]ProjectResponse, error) {
	var projects []models.Project

	if user.Role == models.RoleAdmin {
		if err := s.db.Preload("Creator").Order("created_at DESC").Find(&projects).Error; err != nil {
			return nil, err
		}
	} else {
		if err := s.db.
			Joins("JOIN project_members pm ON pm.project_id = projects.id").
			Where("pm.user_id = ? AND pm.status = ?", user.ID, models.MemberStatusAccepted).
			Preload("Creator").
			Order("projects.created_at DESC").
			Find(&projects).Error; err != nil {
			return nil, err
		}
	}

	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, s.mapProject(&projects[i], user))
	}
	return out, nil
}

// GetByID returns a project by ID.
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) mapProject(p *models.Project, user *models.User) ProjectResponse {
	var memberCount int64
	s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND status = ?", p.ID, models.MemberStatusAccepted).
		Count(&memberCount)

	userStatus := "NONE"
	if user.Role == models.RoleAdmin {
		userStatus = models.MemberStatusAccepted
	} else {
		var member models.ProjectMember
		if err := s.db.Where("project_id = ? AND user_id = ?", p.ID, user.ID).
			First(&member).Error; err == nil {
			userStatus = member.Status
		}
	}

	resp := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Key:         p.Key,
		Description: p.Description,
		Status:      p.Status,
		MemberCount: memberCount,
		UserStatus:  userStatus,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.Creator != nil {
		resp.CreatorName = p.Creator.Name
	}
	return resp
}
