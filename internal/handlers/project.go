package handlers

import (
	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	db             *gorm.DB
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB, projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{db: db, projectService: projectService}
}

// List handles GET /api/projects. Admins see every project, everyone
// else sees projects where they hold an accepted membership.
func (h *ProjectHandler) List(c *gin.Context) {
	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	projects, err := h.projectService.ListForUser(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	user, err := currentUser(c, h.db)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}
