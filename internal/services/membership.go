package services

import (
	"errors"
	"strings"
	"time"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

// MembershipService owns the invitation/membership state machine:
// invite -> PENDING -> ACCEPTED or REJECTED, with REJECTED re-invitable.
type MembershipService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewMembershipService(db *gorm.DB, notifier Notifier) *MembershipService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MembershipService{db: db, notifier: notifier}
}

type InviteRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required"`
	Message string `json:"message"`
}

// MemberResponse is the member/invite shape returned to the HTTP layer.
type MemberResponse struct {
	ID        uint   `json:"id"`
	UserID    *uint  `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	IsOwner   bool   `json:"is_owner"`
	ProjectID uint   `json:"project_id"`
	Project   string `json:"project_name,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Invite creates or refreshes an invitation for email into the project.
// Only platform admins and the project owner may invite; non-admin inviters
// may only grant DEVELOPER or TESTER. The read-modify-write runs in a
// transaction and the unique indexes on (project, user) and
// (project, invited_email) guarantee at most one row per identity.
func (s *MembershipService) Invite(projectID uint, inviter *models.User, req *InviteRequest) (*models.ProjectMember, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	access := ResolveAccess(s.db, projectID, inviter)
	if !access.CanManageMembers() {
		return nil, response.NewForbidden("only project owners or admins can invite members")
	}

	role := strings.ToUpper(req.Role)
	if !models.ValidRole(role) {
		return nil, response.NewValidation("invalid role: " + req.Role)
	}
	if access.Level != AccessAdmin && role != models.RoleDeveloper && role != models.RoleTester {
		return nil, response.NewForbidden("project owners can only invite DEVELOPERs or TESTERs")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	now := time.Now()

	var member *models.ProjectMember
	var notify bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		targetFound := true
		if err := tx.Where("email = ?", email).First(&target).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			targetFound = false
		}

		var existing models.ProjectMember
		var err error
		if targetFound {
			err = tx.Where("project_id = ? AND user_id = ?", projectID, target.ID).
				First(&existing).Error
		} else {
			err = tx.Where("project_id = ? AND user_id IS NULL AND invited_email = ?", projectID, email).
				First(&existing).Error
		}

		switch {
		case err == nil:
			switch existing.Status {
			case models.MemberStatusAccepted:
				return response.NewConflict("user is already a member of this project")
			case models.MemberStatusPending:
				// Plain resend: refresh metadata, keep the same row, no
				// notification.
				existing.InvitedAt = &now
				existing.InvitedByID = &inviter.ID
				existing.Message = req.Message
			case models.MemberStatusRejected:
				existing.Status = models.MemberStatusPending
				existing.InvitedAt = &now
				existing.InvitedByID = &inviter.ID
				existing.Message = req.Message
				notify = true
			}
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			member = &existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			created := models.ProjectMember{
				ProjectID:    projectID,
				InvitedEmail: email,
				Role:         role,
				Status:       models.MemberStatusPending,
				InvitedByID:  &inviter.ID,
				InvitedAt:    &now,
				Message:      req.Message,
			}
			if targetFound {
				created.UserID = &target.ID
			}
			if err := tx.Create(&created).Error; err != nil {
				if isUniqueViolation(err) {
					return response.NewConflict("a concurrent invite already exists for this user")
				}
				return err
			}
			member = &created
			notify = true
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if notify {
		s.notifier.NotifyInvite(email, project.Name, inviter.Name, req.Message)
	}
	return member, nil
}

// Respond records the invited user's decision. Accepting binds the user to
// the row (resolving email-only invites) and stamps joined_at; rejecting
// keeps the row so it can be re-invited later.
func (s *MembershipService) Respond(memberID uint, user *models.User, decision string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("invite not found")
		}
		return nil, err
	}

	if member.UserID != nil && *member.UserID != user.ID {
		return nil, response.NewForbidden("not authorized to respond to this invite")
	}
	if member.UserID == nil && !strings.EqualFold(member.InvitedEmail, user.Email) {
		return nil, response.NewForbidden("this invite was for another email address")
	}

	switch strings.ToUpper(decision) {
	case models.MemberStatusAccepted:
		now := time.Now()
		member.Status = models.MemberStatusAccepted
		member.UserID = &user.ID
		member.JoinedAt = &now
	case models.MemberStatusRejected:
		member.Status = models.MemberStatusRejected
	default:
		return nil, response.NewValidation("decision must be ACCEPTED or REJECTED")
	}

	if err := s.db.Save(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember physically deletes a membership row. The owner row is
// protected from everyone but platform admins so a project is never
// orphaned.
func (s *MembershipService) RemoveMember(projectID, memberID uint, actor *models.User) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return err
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return err
	}

	access := ResolveAccess(s.db, projectID, actor)
	if !access.CanManageMembers() {
		return response.NewForbidden("only project owners or admins can remove members")
	}
	if member.IsOwner && access.Level != AccessAdmin {
		return response.NewForbidden("cannot remove the project owner")
	}

	return s.db.Delete(&member).Error
}

// ListMembers returns every membership row of a project, including pending
// and rejected invites.
func (s *MembershipService) ListMembers(projectID uint) ([]MemberResponse, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, mapMember(&members[i]))
	}
	return out, nil
}

// ListPendingInvites returns the user's open invitations.
func (s *MembershipService) ListPendingInvites(user *models.User) ([]MemberResponse, error) {
	var members []models.ProjectMember
	if err := s.db.Where("user_id = ? AND status = ?", user.ID, models.MemberStatusPending).
		Preload("User").
		Preload("Project").
		Order("invited_at DESC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, mapMember(&members[i]))
	}
	return out, nil
}

// LinkEmailInvites binds unresolved email-only invites to a freshly
// registered user so their pending invitations become visible.
func LinkEmailInvites(db *gorm.DB, user *models.User) error {
	return db.Model(&models.ProjectMember{}).
		Where("user_id IS NULL AND invited_email = ?", strings.ToLower(user.Email)).
		Update("user_id", user.ID).Error
}

func mapMember(m *models.ProjectMember) MemberResponse {
	resp := MemberResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		UserName:  "Invited (Not Registered)",
		UserEmail: m.InvitedEmail,
		Role:      m.Role,
		Status:    m.Status,
		IsOwner:   m.IsOwner,
		ProjectID: m.ProjectID,
		Message:   m.Message,
	}
	if m.User != nil {
		resp.UserName = m.User.Name
		resp.UserEmail = m.User.Email
	}
	if m.Project != nil {
		resp.Project = m.Project.Name
	}
	return resp
}

// isUniqueViolation matches duplicate-key errors across the supported
// drivers well enough to map them to Conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
