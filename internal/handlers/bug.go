package handlers

import (
	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BugHandler struct {
	db         *gorm.DB
	bugService *services.BugService
}

func NewBugHandler(db *gorm.DB, bugService *services.BugService) *BugHandler {
	return &BugHandler{db: db, bugService: bugService}
}

// ListByProject handles GET /api/projects/:id/bugs.
func (h *BugHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	bugs, err := h.bugService.ListByProject(projectID, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bugs)
}

// Create handles POST /api/bugs.
func (h *BugHandler) Create(c *gin.Context) {
	var req services.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	bug, err := h.bugService.Create(&req, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bug)
}

type statusBody struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/bugs/:id/status.
func (h *BugHandler) UpdateStatus(c *gin.Context) {
	bugID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	bug, err := h.bugService.UpdateStatus(bugID, body.Status, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bug)
}

type assignBody struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Assign handles PUT /api/bugs/:id/assign.
func (h *BugHandler) Assign(c *gin.Context) {
	bugID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.bugService.Assign(bugID, body.UserID, user); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "bug assigned"})
}
