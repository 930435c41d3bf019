package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

// BugService owns bug creation, the role-gated status workflow and
// assignment.
type BugService struct {
	db *gorm.DB
}

func NewBugService(db *gorm.DB) *BugService {
	return &BugService{db: db}
}

type CreateBugRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required"`
	AssigneeID  *uint  `json:"assignee_id"`
}

type BugResponse struct {
	ID           uint   `json:"id"`
	BugID        string `json:"bug_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
	ProjectID    uint   `json:"project_id"`
	ProjectName  string `json:"project_name"`
	CreatorName  string `json:"creator_name"`
	AssigneeID   *uint  `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// allowedTransitions is the flat permission table: the target statuses an
// actor may set depend only on the actor's global role, never on the bug's
// current status.
var allowedTransitions = map[string][]string{
	models.RoleAdmin: {
		models.BugStatusOpen, models.BugStatusInProgress, models.BugStatusReview,
		models.BugStatusTesting, models.BugStatusClosed,
	},
	models.RoleManager: {
		models.BugStatusOpen, models.BugStatusInProgress, models.BugStatusReview,
		models.BugStatusTesting, models.BugStatusClosed,
	},
	models.RoleDeveloper: {models.BugStatusInProgress, models.BugStatusReview},
	models.RoleTester:    {models.BugStatusTesting, models.BugStatusClosed},
}

// Create reports a new bug. The creator must be a platform admin or an
// accepted member of the project; a requested assignee must be an accepted
// member too. The ticket number is the project's bug count plus one,
// computed inside the transaction, with the unique index on bug_id as the
// backstop under concurrent creation. Soft-deleted bugs stay in the count
// so numbers are never reused.
func (s *BugService) Create(req *CreateBugRequest, creator *models.User) (*models.Bug, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	access := ResolveAccess(s.db, project.ID, creator)
	if !access.IsAcceptedMember() {
		return nil, response.NewForbidden("only project members can report bugs")
	}

	priority := strings.ToUpper(req.Priority)
	if !models.ValidBugPriority(priority) {
		return nil, response.NewValidation("invalid priority: " + req.Priority)
	}

	bug := models.Bug{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      models.BugStatusOpen,
		ProjectID:   project.ID,
		CreatorID:   creator.ID,
	}

	if req.AssigneeID != nil {
		var assignee models.User
		if err := s.db.First(&assignee, *req.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("assignee not found")
			}
			return nil, err
		}
		if !s.isAcceptedMember(project.ID, assignee.ID) {
			return nil, response.NewValidation("assignee must be an accepted member of the project")
		}
		bug.AssigneeID = req.AssigneeID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.Bug{}).
			Where("project_id = ?", project.ID).
			Count(&count).Error; err != nil {
			return err
		}
		bug.BugID = fmt.Sprintf("%s-%d", project.Key, count+1)

		if err := tx.Create(&bug).Error; err != nil {
			if isUniqueViolation(err) {
				return response.NewConflict("bug id collision, retry the request")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

// UpdateStatus moves a bug to the requested status if the actor's global
// role permits that target. No project-membership check is applied here;
// the permission model is role-only, matching the workflow rules.
func (s *BugService) UpdateStatus(bugID uint, status string, actor *models.User) (*models.Bug, error) {
	var bug models.Bug
	if err := s.db.First(&bug, bugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("bug not found")
		}
		return nil, err
	}

	target := strings.ToUpper(status)
	if !models.ValidBugStatus(target) {
		return nil, response.NewValidation("invalid status: " + status)
	}

	allowed, ok := allowedTransitions[actor.Role]
	if !ok {
		return nil, response.NewForbidden("role " + actor.Role + " cannot update bug status")
	}
	if !contains(allowed, target) {
		return nil, response.NewForbidden(
			fmt.Sprintf("%s may only move bugs to %s", actor.Role, strings.Join(allowed, " or ")))
	}

	bug.Status = target
	if err := s.db.Save(&bug).Error; err != nil {
		return nil, err
	}
	return &bug, nil
}

// Assign sets the bug's assignee without touching its status. Only admins
// and managers may assign; the assignee must be an accepted member of the
// bug's project.
func (s *BugService) Assign(bugID, userID uint, actor *models.User) error {
	var bug models.Bug
	if err := s.db.First(&bug, bugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("bug not found")
		}
		return err
	}

	if actor.Role != models.RoleAdmin && actor.Role != models.RoleManager {
		return response.NewForbidden("only admins and managers can assign bugs")
	}

	var assignee models.User
	if err := s.db.First(&assignee, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user not found")
		}
		return err
	}
	if !s.isAcceptedMember(bug.ProjectID, assignee.ID) {
		return response.NewValidation("assignee must be an accepted member of the project")
	}

	bug.AssigneeID = &assignee.ID
	return s.db.Save(&bug).Error
}

// ListByProject returns the project's bugs in creation order. The caller
// must be a platform admin or an accepted member.
func (s *BugService) ListByProject(projectID uint, user *models.User) ([]BugResponse, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	access := ResolveAccess(s.db, project.ID, user)
	if !access.IsAcceptedMember() {
		return nil, response.NewForbidden("you are not a member of this project")
	}

	var bugs []models.Bug
	if err := s.db.Where("project_id = ?", projectID).
		Preload("Creator").
		Preload("Assignee").
		Order("id ASC").
		Find(&bugs).Error; err != nil {
		return nil, err
	}

	out := make([]BugResponse, 0, len(bugs))
	for i := range bugs {
		out = append(out, s.mapBug(&bugs[i], &project))
	}
	return out, nil
}

func (s *BugService) isAcceptedMember(projectID, userID uint) bool {
	var count int64
	s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND status = ?",
			projectID, userID, models.MemberStatusAccepted).
		Count(&count)
	return count > 0
}

func (s *BugService) mapBug(b *models.Bug, project *models.Project) BugResponse {
	resp := BugResponse{
		ID:          b.ID,
		BugID:       b.BugID,
		Title:       b.Title,
		Description: b.Description,
		Priority:    b.Priority,
		Status:      b.Status,
		ProjectID:   b.ProjectID,
		ProjectName: project.Name,
		AssigneeID:  b.AssigneeID,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.Creator != nil {
		resp.CreatorName = b.Creator.Name
	}
	resp.AssigneeName = "Unassigned"
	if b.Assignee != nil {
		resp.AssigneeName = b.Assignee.Name
	}
	return resp
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
