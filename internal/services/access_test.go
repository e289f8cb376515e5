package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

type fakeEnrollmentRepo struct{ enrolled bool }

func (f fakeEnrollmentRepo) IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	return f.enrolled, nil
}

type fakeStaffRepo struct{ staff bool }

func (f fakeStaffRepo) IsStaff(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	return f.staff, nil
}

type fakeGatingRepo struct{ groups map[string]struct{} }

func (f fakeGatingRepo) UnlockedGroups(ctx context.Context, userID uuid.UUID, courseID string) (map[string]struct{}, error) {
	return f.groups, nil
}

func newTestAccessService(enrolled, staff bool, groups map[string]struct{}) AccessService {
	svc := NewAccessService(
		logger.NewNop(),
		fakeEnrollmentRepo{enrolled: enrolled},
		fakeStaffRepo{staff: staff},
		fakeGatingRepo{groups: groups},
	)
	svc.(*accessService).now = func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func checkerFor(t *testing.T, svc AccessService) blocks.AccessChecker {
	t.Helper()
	checker, err := svc.CheckerFor(context.Background(), blocks.Viewer{ID: uuid.New()}, "course-1")
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	return checker
}

func decide(t *testing.T, checker blocks.AccessChecker, b *blocks.Block) blocks.AccessDecision {
	t.Helper()
	d, err := checker.HasAccess(context.Background(), b)
	if err != nil {
		t.Fatalf("has access: %v", err)
	}
	return d
}

func TestAccess_UnenrolledUserDeniedEverything(t *testing.T) {
	checker := checkerFor(t, newTestAccessService(false, false, nil))
	d := decide(t, checker, &blocks.Block{ID: "course-block", Type: "course"})
	if d.Allowed {
		t.Fatalf("unenrolled user must be denied")
	}
}

func TestAccess_EnrolledUserSeesReleasedContent(t *testing.T) {
	checker := checkerFor(t, newTestAccessService(true, false, nil))
	released := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	d := decide(t, checker, &blocks.Block{
		ID: "chapter1", Type: "chapter",
		Authored: blocks.AuthoredFields{ReleaseAt: &released},
	})
	if !d.Allowed {
		t.Fatalf("released content denied: %s", d.Reason)
	}
}

func TestAccess_FutureReleaseDateDenied(t *testing.T) {
	checker := checkerFor(t, newTestAccessService(true, false, nil))
	future := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	d := decide(t, checker, &blocks.Block{
		ID: "chapter2", Type: "chapter",
		Authored: blocks.AuthoredFields{ReleaseAt: &future},
	})
	if d.Allowed {
		t.Fatalf("unreleased content must be denied")
	}
}

func TestAccess_StaffBypassesAllGates(t *testing.T) {
	checker := checkerFor(t, newTestAccessService(false, true, nil))
	future := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	d := decide(t, checker, &blocks.Block{
		ID: "secret", Type: "html",
		Authored: blocks.AuthoredFields{StaffOnly: true, ReleaseAt: &future, GatingGroup: "exam"},
	})
	if !d.Allowed {
		t.Fatalf("staff must bypass gates: %s", d.Reason)
	}
}

func TestAccess_StaffOnlyBlockHiddenFromLearners(t *testing.T) {
	checker := checkerFor(t, newTestAccessService(true, false, nil))
	d := decide(t, checker, &blocks.Block{
		ID: "notes", Type: "html",
		Authored: blocks.AuthoredFields{StaffOnly: true},
	})
	if d.Allowed {
		t.Fatalf("staff-only block must be hidden from learners")
	}
}

func TestAccess_GatingGroupMembership(t *testing.T) {
	locked := checkerFor(t, newTestAccessService(true, false, nil))
	unlocked := checkerFor(t, newTestAccessService(true, false, map[string]struct{}{"exam": {}}))
	gated := &blocks.Block{
		ID: "final", Type: "problem",
		Authored: blocks.AuthoredFields{GatingGroup: "exam"},
	}
	if decide(t, locked, gated).Allowed {
		t.Fatalf("gated block visible without prerequisite")
	}
	if !decide(t, unlocked, gated).Allowed {
		t.Fatalf("gated block hidden despite satisfied prerequisite")
	}
}
