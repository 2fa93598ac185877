package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk-api/internal/models"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

var (
	student      = models.Actor{ID: "s1", Role: models.RoleStudent}
	otherStudent = models.Actor{ID: "s2", Role: models.RoleStudent}
	admin        = models.Actor{ID: "a1", Role: models.RoleAdmin}
)

func TestCanCreateComplaint(t *testing.T) {
	assert.NoError(t, CanCreateComplaint(student))
	assert.True(t, appErrors.Is(CanCreateComplaint(admin), appErrors.ErrForbidden))
}

func TestCanViewComplaint(t *testing.T) {
	assert.NoError(t, CanViewComplaint(admin, "s1"))
	assert.NoError(t, CanViewComplaint(student, "s1"))
	assert.True(t, appErrors.Is(CanViewComplaint(otherStudent, "s1"), appErrors.ErrForbidden))
}

func TestAdminOnlySurfaces(t *testing.T) {
	checks := []func(models.Actor) error{
		CanListAllComplaints,
		CanViewGlobalStats,
		CanUpdateStatus,
		CanReviewFeedback,
		CanManageStudents,
	}
	for _, check := range checks {
		assert.NoError(t, check(admin))
		assert.True(t, appErrors.Is(check(student), appErrors.ErrForbidden))
	}
}

func TestStudentOnlySurfaces(t *testing.T) {
	assert.NoError(t, CanListOwnComplaints(student))
	assert.True(t, appErrors.Is(CanListOwnComplaints(admin), appErrors.ErrForbidden))
	assert.NoError(t, CanViewOwnStats(student))
	assert.True(t, appErrors.Is(CanViewOwnStats(admin), appErrors.ErrForbidden))
}

func TestCanSubmitFeedback(t *testing.T) {
	resolved := &models.Complaint{ID: "c1", StudentID: "s1", Status: models.StatusResolved}
	pending := &models.Complaint{ID: "c2", StudentID: "s1", Status: models.StatusPending}

	assert.NoError(t, CanSubmitFeedback(student, resolved))
	assert.True(t, appErrors.Is(CanSubmitFeedback(admin, resolved), appErrors.ErrForbidden))
	assert.True(t, appErrors.Is(CanSubmitFeedback(otherStudent, resolved), appErrors.ErrForbidden))

	err := CanSubmitFeedback(student, pending)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.Equal(t, "only resolved complaints accept feedback", appErrors.FromError(err).Message)
}

func TestCanTargetUser(t *testing.T) {
	assert.NoError(t, CanTargetUser(&models.User{ID: "s1", Role: models.RoleStudent}))
	assert.True(t, appErrors.Is(CanTargetUser(&models.User{ID: "a1", Role: models.RoleAdmin}), appErrors.ErrNotFound))
	assert.True(t, appErrors.Is(CanTargetUser(nil), appErrors.ErrNotFound))
}
