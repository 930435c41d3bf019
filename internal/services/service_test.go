package services

import (
	"path/filepath"
	"testing"

	"github.com/bugnest/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Bug{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Status: models.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

// createProject uses the project service so the creator gets the owner
// membership the same way production code does.
func createProject(t *testing.T, db *gorm.DB, name, key string, creator *models.User) *models.Project {
	t.Helper()
	project, err := NewProjectService(db).Create(&CreateProjectRequest{
		Name: name,
		Key:  key,
	}, creator)
	if err != nil {
		t.Fatalf("create project %s: %v", key, err)
	}
	return project
}

func acceptInvite(t *testing.T, svc *MembershipService, member *models.ProjectMember, user *models.User) *models.ProjectMember {
	t.Helper()
	updated, err := svc.Respond(member.ID, user, models.MemberStatusAccepted)
	if err != nil {
		t.Fatalf("accept invite %d: %v", member.ID, err)
	}
	return updated
}

// recordingNotifier captures invite notifications for assertions.
type recordingNotifier struct {
	invites []string
}

func (n *recordingNotifier) NotifyInvite(email, projectName, inviterName, message string) {
	n.invites = append(n.invites, email)
}
