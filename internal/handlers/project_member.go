package handlers

import (
	"strconv"

	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectMemberHandler struct {
	db                *gorm.DB
	membershipService *services.MembershipService
}

func NewProjectMemberHandler(db *gorm.DB, membershipService *services.MembershipService) *ProjectMemberHandler {
	return &ProjectMemberHandler{db: db, membershipService: membershipService}
}

// ListMembers handles GET /api/projects/:id/members.
func (h *ProjectMemberHandler) ListMembers(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	access := services.ResolveAccess(h.db, projectID, user)
	if access.Level == services.AccessNone {
		response.Error(c, response.NewForbidden("not a member of this project"))
		return
	}

	members, err := h.membershipService.ListMembers(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

type inviteBody struct {
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required"`
	Message string `json:"message"`
}

// Invite handles POST /api/projects/:id/invite.
func (h *ProjectMemberHandler) Invite(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body inviteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.membershipService.Invite(projectID, user, &services.InviteRequest{
		Email:   body.Email,
		Role:    body.Role,
		Message: body.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// MyInvites handles GET /api/projects/invites, listing the caller's
// pending invitations.
func (h *ProjectMemberHandler) MyInvites(c *gin.Context) {
	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	invites, err := h.membershipService.ListPendingInvites(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invites)
}

type respondBody struct {
	Action string `json:"action" binding:"required"`
}

// Respond handles POST /api/projects/invites/:inviteId/respond.
func (h *ProjectMemberHandler) Respond(c *gin.Context) {
	inviteID, ok := parseIDParam(c, "inviteId")
	if !ok {
		return
	}

	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.membershipService.Respond(inviteID, user, body.Action)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, member)
}

// RemoveMember handles DELETE /api/projects/:id/members/:memberId.
func (h *ProjectMemberHandler) RemoveMember(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.membershipService.RemoveMember(projectID, memberID, user); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
