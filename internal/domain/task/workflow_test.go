package task

import (
	"strings"
	"testing"
)

func ownerCtx() TransitionContext {
	return TransitionContext{
		TaskOwnerID:   "u-owner",
		CurrentUserID: "u-owner",
	}
}

func managerCtx() TransitionContext {
	return TransitionContext{
		TaskOwnerID:     "u-owner",
		CurrentUserID:   "u-manager",
		CurrentUserRole: "manager",
		IsManager:       true,
	}
}

func TestOwnerHappyPathWithoutReview(t *testing.T) {
	ctx := ownerCtx()
	steps := []struct{ from, to string }{
		{StatusNew, StatusAccepted},
		{StatusAccepted, StatusInProgress},
		{StatusInProgress, StatusClosedApproved},
	}
	for _, step := range steps {
		if result := Validate(step.from, step.to, ctx); !result.Valid {
			t.Fatalf("%s -> %s should be valid for owner, got %+v", step.from, step.to, result)
		}
	}
}

func TestOwnerHappyPathWithReview(t *testing.T) {
	ctx := ownerCtx()
	ctx.RequiresReview = true

	if result := Validate(StatusInProgress, StatusCompletedPendingReview, ctx); !result.Valid {
		t.Fatalf("submit for review should be valid, got %+v", result)
	}
	if result := Validate(StatusInProgress, StatusClosedApproved, ctx); result.Valid {
		t.Fatalf("direct close must be rejected when review is required")
	} else if result.Code != CodeInvalidTransition {
		t.Fatalf("expected invalid_transition, got %q", result.Code)
	}
}

func TestDirectCloseRejectedOnlyWithReviewFlag(t *testing.T) {
	ctx := ownerCtx()

	if result := Validate(StatusInProgress, StatusCompletedPendingReview, ctx); result.Valid {
		t.Fatalf("submit for review must be rejected when no review is required")
	}
	if result := Validate(StatusInProgress, StatusClosedApproved, ctx); !result.Valid {
		t.Fatalf("direct close should be valid without review flag, got %+v", result)
	}
}

func TestUnknownTransitionsRejected(t *testing.T) {
	ctx := ownerCtx()
	cases := []struct{ from, to string }{
		{StatusNew, StatusClosedApproved},
		{StatusNew, StatusOnHold},
		{StatusAccepted, StatusCompletedPendingReview},
		{StatusOnHold, StatusClosedApproved},
		{StatusClosedApproved, StatusInProgress},
		{StatusReopened, StatusClosedApproved},
		{StatusNew, StatusNew},
		{StatusInProgress, StatusInProgress},
	}
	for _, c := range cases {
		result := Validate(c.from, c.to, ctx)
		if result.Valid {
			t.Fatalf("%s -> %s should be invalid", c.from, c.to)
		}
		if result.Code != CodeInvalidTransition {
			t.Fatalf("%s -> %s: expected invalid_transition, got %q", c.from, c.to, result.Code)
		}
		if result.Message == "" {
			t.Fatalf("%s -> %s: rejection must carry a message", c.from, c.to)
		}
	}
}

func TestNonOwnerCannotDriveOwnerTransitions(t *testing.T) {
	ctx := managerCtx()
	cases := []struct{ from, to string }{
		{StatusNew, StatusAccepted},
		{StatusAccepted, StatusInProgress},
		{StatusOnHold, StatusInProgress},
		{StatusReopened, StatusInProgress},
	}
	for _, c := range cases {
		result := Validate(c.from, c.to, ctx)
		if result.Valid {
			t.Fatalf("%s -> %s should be rejected for a non-owner", c.from, c.to)
		}
		if result.Code != CodeNotOwner {
			t.Fatalf("%s -> %s: expected not_owner, got %q", c.from, c.to, result.Code)
		}
	}
}

func TestHoldRequiresReason(t *testing.T) {
	ctx := ownerCtx()

	result := Validate(StatusInProgress, StatusOnHold, ctx)
	if result.Valid || result.Code != CodeReasonTooShort {
		t.Fatalf("hold without reason should fail with reason_too_short, got %+v", result)
	}

	ctx.Reason = "too short"
	if result := Validate(StatusInProgress, StatusOnHold, ctx); result.Valid {
		t.Fatalf("9-char reason should be rejected")
	}

	ctx.Reason = "waiting on"
	if result := Validate(StatusInProgress, StatusOnHold, ctx); !result.Valid {
		t.Fatalf("exactly 10 chars should pass, got %+v", result)
	}

	ctx.Reason = "   padded    "
	if result := Validate(StatusInProgress, StatusOnHold, ctx); result.Valid {
		t.Fatalf("whitespace must not count toward the minimum length")
	}

	ctx.Reason = strings.Repeat("x", 50)
	if result := Validate(StatusInProgress, StatusOnHold, ctx); !result.Valid {
		t.Fatalf("long reason should pass, got %+v", result)
	}
}

func TestManagerApproval(t *testing.T) {
	ctx := managerCtx()
	if result := Validate(StatusCompletedPendingReview, StatusClosedApproved, ctx); !result.Valid {
		t.Fatalf("manager approval should be valid, got %+v", result)
	}
}

func TestSelfApprovalForbiddenEvenForManagers(t *testing.T) {
	// An owner who also manages themselves (department head reviewing their
	// own task) must still be blocked.
	ctx := TransitionContext{
		TaskOwnerID:     "u-head",
		CurrentUserID:   "u-head",
		CurrentUserRole: "department_head",
		IsManager:       true,
	}
	result := Validate(StatusCompletedPendingReview, StatusClosedApproved, ctx)
	if result.Valid {
		t.Fatalf("self-approval must be rejected")
	}
	if result.Code != CodeSelfApproval {
		t.Fatalf("expected self_approval_forbidden, got %q", result.Code)
	}
}

func TestNonManagerCannotApprove(t *testing.T) {
	ctx := TransitionContext{
		TaskOwnerID:   "u-owner",
		CurrentUserID: "u-peer",
	}
	result := Validate(StatusCompletedPendingReview, StatusClosedApproved, ctx)
	if result.Valid || result.Code != CodeNotManager {
		t.Fatalf("peer approval should fail with not_manager, got %+v", result)
	}
}

func TestReopenFromReviewRequiresManagerAndReason(t *testing.T) {
	ctx := managerCtx()

	result := Validate(StatusCompletedPendingReview, StatusReopened, ctx)
	if result.Valid || result.Code != CodeReasonTooShort {
		t.Fatalf("reopen without reason should fail with reason_too_short, got %+v", result)
	}

	ctx.Reason = "acceptance criteria not covered"
	if result := Validate(StatusCompletedPendingReview, StatusReopened, ctx); !result.Valid {
		t.Fatalf("manager reopen with reason should pass, got %+v", result)
	}

	ownerSide := ownerCtx()
	ownerSide.Reason = ctx.Reason
	if result := Validate(StatusCompletedPendingReview, StatusReopened, ownerSide); result.Valid {
		t.Fatalf("owner must not reopen their own task from review")
	}
}

func TestReopenClosedTaskByOwnerOrManager(t *testing.T) {
	reason := "regression found after release"

	ownerSide := ownerCtx()
	ownerSide.Reason = reason
	if result := Validate(StatusClosedApproved, StatusReopened, ownerSide); !result.Valid {
		t.Fatalf("owner reopen of closed task should pass, got %+v", result)
	}

	managerSide := managerCtx()
	managerSide.Reason = reason
	if result := Validate(StatusClosedApproved, StatusReopened, managerSide); !result.Valid {
		t.Fatalf("manager reopen of closed task should pass, got %+v", result)
	}

	peer := TransitionContext{TaskOwnerID: "u-owner", CurrentUserID: "u-peer", Reason: reason}
	if result := Validate(StatusClosedApproved, StatusReopened, peer); result.Valid {
		t.Fatalf("unrelated user must not reopen a closed task")
	}
}

func TestGuardOrderOwnershipBeforeReason(t *testing.T) {
	// A non-owner with no reason must see the ownership failure, not the
	// reason failure.
	ctx := TransitionContext{TaskOwnerID: "u-owner", CurrentUserID: "u-other"}
	result := Validate(StatusInProgress, StatusOnHold, ctx)
	if result.Valid || result.Code != CodeNotOwner {
		t.Fatalf("expected not_owner before reason check, got %+v", result)
	}
}

func TestGuardOrderRoleBeforeReason(t *testing.T) {
	ctx := TransitionContext{TaskOwnerID: "u-owner", CurrentUserID: "u-peer"}
	result := Validate(StatusCompletedPendingReview, StatusReopened, ctx)
	if result.Valid || result.Code != CodeNotManager {
		t.Fatalf("expected not_manager before reason check, got %+v", result)
	}
}

func TestValidTransitionsForOwner(t *testing.T) {
	got := ValidTransitions(StatusNew, ownerCtx())
	want := []string{StatusAccepted, StatusInProgress}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestValidTransitionsSkipsReasonGuard(t *testing.T) {
	// on_hold must be listed even though committing it later needs a reason.
	got := ValidTransitions(StatusInProgress, ownerCtx())
	found := false
	for _, status := range got {
		if status == StatusOnHold {
			found = true
		}
	}
	if !found {
		t.Fatalf("on_hold missing from owner's options: %v", got)
	}
}

func TestValidTransitionsRespectsReviewFlag(t *testing.T) {
	withReview := ownerCtx()
	withReview.RequiresReview = true
	got := ValidTransitions(StatusInProgress, withReview)
	for _, status := range got {
		if status == StatusClosedApproved {
			t.Fatalf("direct close listed despite review requirement: %v", got)
		}
	}

	noReview := ownerCtx()
	got = ValidTransitions(StatusInProgress, noReview)
	for _, status := range got {
		if status == StatusCompletedPendingReview {
			t.Fatalf("review submission listed despite no review requirement: %v", got)
		}
	}
}

func TestValidTransitionsForUnrelatedUserIsEmpty(t *testing.T) {
	peer := TransitionContext{TaskOwnerID: "u-owner", CurrentUserID: "u-peer"}
	if got := ValidTransitions(StatusNew, peer); len(got) != 0 {
		t.Fatalf("unrelated user should have no options from new, got %v", got)
	}
	if got := ValidTransitions(StatusInProgress, peer); len(got) != 0 {
		t.Fatalf("unrelated user should have no options from in_progress, got %v", got)
	}
}

func TestValidTransitionsTerminalWithoutActor(t *testing.T) {
	// closed_approved only reopens, and only for owner or manager.
	got := ValidTransitions(StatusClosedApproved, managerCtx())
	if len(got) != 1 || got[0] != StatusReopened {
		t.Fatalf("expected [reopened], got %v", got)
	}
}
