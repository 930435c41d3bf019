package handlers

import (
	"errors"

	"github.com/bugnest/backend/internal/middleware"
	"github.com/bugnest/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUser loads the authenticated user for the request. Returns an
// error when the token's subject no longer exists.
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	id := middleware.GetUserID(c)
	if id == 0 {
		return nil, errors.New("not authenticated")
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}
