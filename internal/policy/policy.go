// Package policy holds the pure access-control decisions for the complaint
// tracker. Functions here know nothing about HTTP or storage: they take the
// authenticated actor plus whatever resource facts matter and return nil on
// allow or a typed error on deny. Coarse role gating also happens at the
// router, but services always consult this package so the rules hold no
// matter how an operation is reached.
package policy

import (
	"github.com/campusdesk/campusdesk-api/internal/models"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

// CanCreateComplaint allows only students to raise complaints.
func CanCreateComplaint(actor models.Actor) error {
	if actor.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can raise complaints")
	}
	return nil
}

// CanViewComplaint allows admins to read any complaint and students to read
// their own.
func CanViewComplaint(actor models.Actor, ownerID string) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleStudent && actor.ID == ownerID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "access denied")
}

// CanListOwnComplaints scopes the my-complaints listing to students.
func CanListOwnComplaints(actor models.Actor) error {
	if actor.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only students have personal complaints")
	}
	return nil
}

// CanViewOwnStats scopes the personal dashboard counts to students.
func CanViewOwnStats(actor models.Actor) error {
	return CanListOwnComplaints(actor)
}

// CanListAllComplaints restricts the global listing to admins.
func CanListAllComplaints(actor models.Actor) error {
	return requireAdmin(actor)
}

// CanViewGlobalStats restricts the global dashboard to admins.
func CanViewGlobalStats(actor models.Actor) error {
	return requireAdmin(actor)
}

// CanUpdateStatus restricts complaint triage to admins.
func CanUpdateStatus(actor models.Actor) error {
	return requireAdmin(actor)
}

// CanSubmitFeedback checks everything about the actor and the complaint's
// current state except feedback uniqueness, which the storage layer settles.
func CanSubmitFeedback(actor models.Actor, complaint *models.Complaint) error {
	if actor.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can submit feedback")
	}
	if complaint.StudentID != actor.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "you can only give feedback on your own complaints")
	}
	if complaint.Status != models.StatusResolved {
		return appErrors.Clone(appErrors.ErrInvalidState, "only resolved complaints accept feedback")
	}
	return nil
}

// CanReviewFeedback restricts feedback listings and stats to admins.
func CanReviewFeedback(actor models.Actor) error {
	return requireAdmin(actor)
}

// CanManageStudents restricts the user management surface to admins.
func CanManageStudents(actor models.Actor) error {
	return requireAdmin(actor)
}

// CanTargetUser reports whether a managed user may be acted upon. Admin
// accounts, including the caller's own, are not manageable through this
// surface; a missing target looks identical to protect account existence.
func CanTargetUser(target *models.User) error {
	if target == nil || target.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func requireAdmin(actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	return nil
}
