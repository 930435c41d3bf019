package services

import (
	"testing"

	"github.com/bugnest/backend/internal/models"
	"github.com/bugnest/backend/pkg/response"
	"gorm.io/gorm"
)

// addMember wires an accepted membership directly, bypassing the invite
// flow, for tests that only care about bug permissions.
func addMember(t *testing.T, db *gorm.DB, project *models.Project, user *models.User, role string) {
	t.Helper()
	member := models.ProjectMember{
		ProjectID:    project.ID,
		UserID:       &user.ID,
		InvitedEmail: user.Email,
		Role:         role,
		Status:       models.MemberStatusAccepted,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member %s: %v", user.Email, err)
	}
}

func TestCreateBug_SequentialTicketIDs(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "BNF", owner)

	svc := NewBugService(db)

	first, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "login broken", Priority: "HIGH",
	}, owner)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "logout broken", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if first.BugID != "BNF-1" {
		t.Errorf("first BugID = %q, expected BNF-1", first.BugID)
	}
	if second.BugID != "BNF-2" {
		t.Errorf("second BugID = %q, expected BNF-2", second.BugID)
	}
	if first.Status != models.BugStatusOpen {
		t.Errorf("Status = %q, expected OPEN", first.Status)
	}
}

func TestCreateBug_NumbersNotReusedAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "BNF", owner)

	svc := NewBugService(db)
	if _, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "one", Priority: "LOW",
	}, owner); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "two", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := db.Delete(&models.Bug{}, second.ID).Error; err != nil {
		t.Fatalf("delete bug: %v", err)
	}

	third, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "three", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if third.BugID != "BNF-3" {
		t.Errorf("BugID = %q, expected BNF-3 (deleted bugs keep their number)", third.BugID)
	}
}

func TestCreateBug_ProjectsNumberIndependently(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	nest := createProject(t, db, "Nest", "NEST", owner)
	web := createProject(t, db, "Web", "WEB", owner)

	svc := NewBugService(db)
	if _, err := svc.Create(&CreateBugRequest{
		ProjectID: nest.ID, Title: "one", Priority: "LOW",
	}, owner); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := svc.Create(&CreateBugRequest{
		ProjectID: web.ID, Title: "one", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if other.BugID != "WEB-1" {
		t.Errorf("BugID = %q, expected WEB-1", other.BugID)
	}
}

func TestCreateBug_NonMemberForbidden(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	outsider := createUser(t, db, "Eve", "eve@example.com", models.RoleDeveloper)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	_, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "sneaky", Priority: "LOW",
	}, outsider)
	if !response.IsForbidden(err) {
		t.Errorf("expected Forbidden for non-member, got %v", err)
	}
}

func TestCreateBug_InvalidPriority(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	_, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "ENORMOUS",
	}, owner)
	if !response.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateBug_AssigneeMustBeAcceptedMember(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	outsider := createUser(t, db, "Eve", "eve@example.com", models.RoleDeveloper)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)

	_, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW", AssigneeID: &outsider.ID,
	}, owner)
	if !response.IsValidation(err) {
		t.Errorf("non-member assignee: expected validation error, got %v", err)
	}

	missing := uint(9999)
	_, err = svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW", AssigneeID: &missing,
	}, owner)
	if !response.IsNotFound(err) {
		t.Errorf("unknown assignee: expected NotFound, got %v", err)
	}
}

func TestUpdateStatus_RoleGates(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	bug, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	admin := createUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	dev := createUser(t, db, "Bob", "bob@example.com", models.RoleDeveloper)
	tester := createUser(t, db, "Tess", "tess@example.com", models.RoleTester)

	tests := []struct {
		name    string
		actor   *models.User
		target  string
		allowed bool
	}{
		{"admin reopens", admin, models.BugStatusOpen, true},
		{"admin closes", admin, models.BugStatusClosed, true},
		{"manager to testing", owner, models.BugStatusTesting, true},
		{"manager reopens closed", owner, models.BugStatusOpen, true},
		{"developer to in_progress", dev, models.BugStatusInProgress, true},
		{"developer to review", dev, models.BugStatusReview, true},
		{"developer closes", dev, models.BugStatusClosed, false},
		{"developer reopens", dev, models.BugStatusOpen, false},
		{"tester to testing", tester, models.BugStatusTesting, true},
		{"tester closes", tester, models.BugStatusClosed, true},
		{"tester to in_progress", tester, models.BugStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.UpdateStatus(bug.ID, tt.target, tt.actor)
			if tt.allowed {
				if err != nil {
					t.Fatalf("UpdateStatus: %v", err)
				}
				if updated.Status != tt.target {
					t.Errorf("Status = %q, expected %q", updated.Status, tt.target)
				}
			} else if !response.IsForbidden(err) {
				t.Errorf("expected Forbidden, got %v", err)
			}
		})
	}
}

// Status transitions are gated by global role only; a developer who is not
// a member of the project can still move its bugs.
func TestUpdateStatus_NonMemberDeveloper(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	outsideDev := createUser(t, db, "Eve", "eve@example.com", models.RoleDeveloper)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	bug, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.UpdateStatus(bug.ID, models.BugStatusInProgress, outsideDev)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.BugStatusInProgress {
		t.Errorf("Status = %q, expected IN_PROGRESS", updated.Status)
	}
}

func TestUpdateStatus_ClosedNotTerminal(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	bug, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(bug.ID, models.BugStatusClosed, owner); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := svc.UpdateStatus(bug.ID, models.BugStatusOpen, owner)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != models.BugStatusOpen {
		t.Errorf("Status = %q, expected OPEN after reopening", reopened.Status)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	bug, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(bug.ID, "ON_FIRE", owner); !response.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAssign_ManagerOnlyAndMemberTarget(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	dev := createUser(t, db, "Bob", "bob@example.com", models.RoleDeveloper)
	outsider := createUser(t, db, "Eve", "eve@example.com", models.RoleDeveloper)
	project := createProject(t, db, "Nest", "NEST", owner)
	addMember(t, db, project, dev, models.RoleDeveloper)

	svc := NewBugService(db)
	bug, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Assign(bug.ID, dev.ID, dev); !response.IsForbidden(err) {
		t.Errorf("developer assigning: expected Forbidden, got %v", err)
	}
	if err := svc.Assign(bug.ID, outsider.ID, owner); !response.IsValidation(err) {
		t.Errorf("non-member assignee: expected validation error, got %v", err)
	}

	if err := svc.Assign(bug.ID, dev.ID, owner); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	var stored models.Bug
	if err := db.First(&stored, bug.ID).Error; err != nil {
		t.Fatalf("reload bug: %v", err)
	}
	if stored.AssigneeID == nil || *stored.AssigneeID != dev.ID {
		t.Errorf("AssigneeID = %v, expected %d", stored.AssigneeID, dev.ID)
	}
	if stored.Status != models.BugStatusOpen {
		t.Errorf("Status = %q, assignment must not change status", stored.Status)
	}
}

func TestListByProject_MembersOnlyAndUnassignedSentinel(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Alice", "alice@example.com", models.RoleManager)
	outsider := createUser(t, db, "Eve", "eve@example.com", models.RoleDeveloper)
	project := createProject(t, db, "Nest", "NEST", owner)

	svc := NewBugService(db)
	if _, err := svc.Create(&CreateBugRequest{
		ProjectID: project.ID, Title: "x", Priority: "LOW",
	}, owner); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.ListByProject(project.ID, outsider); !response.IsForbidden(err) {
		t.Errorf("outsider listing: expected Forbidden, got %v", err)
	}

	bugs, err := svc.ListByProject(project.ID, owner)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(bugs) != 1 {
		t.Fatalf("bugs = %d, expected 1", len(bugs))
	}
	if bugs[0].AssigneeName != "Unassigned" {
		t.Errorf("AssigneeName = %q, expected Unassigned", bugs[0].AssigneeName)
	}
	if bugs[0].CreatorName != "Alice" {
		t.Errorf("CreatorName = %q, expected Alice", bugs[0].CreatorName)
	}
}
