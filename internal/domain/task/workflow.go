package task

import (
	"fmt"
	"sort"
	"strings"
)

// TransitionContext carries everything a guard needs to decide whether the
// current user may move a task between two statuses.
type TransitionContext struct {
	TaskOwnerID     string
	CurrentUserID   string
	CurrentUserRole string
	// IsManager is true when the current user manages the task owner
	// (direct manager, the owner's department head, or an admin).
	IsManager      bool
	RequiresReview bool
	Reason         string
}

// TransitionResult is the outcome of validating a single requested
// transition. Validate never returns an error value; an illegal request is
// expressed as Valid=false plus a code and message. Callers must not persist
// any change when Valid is false.
type TransitionResult struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	CodeInvalidTransition = "invalid_transition"
	CodeNotOwner          = "not_owner"
	CodeSelfApproval      = "self_approval_forbidden"
	CodeNotManager        = "not_manager"
	CodeReasonTooShort    = "reason_too_short"
)

// actor says who may perform a transition relative to the task owner.
type actor int

const (
	actorOwner actor = iota
	actorManager
	actorOwnerOrManager
)

type transitionKey struct {
	from string
	to   string
}

type transitionRule struct {
	who actor
	// forbidSelf rejects the owner even when their role would otherwise
	// qualify (the self-approval ban).
	forbidSelf  bool
	needsReason bool
	// reviewGate restricts the transition to tasks whose RequiresReview
	// flag matches; nil means the flag is irrelevant.
	reviewGate *bool
}

func boolPtr(v bool) *bool { return &v }

// transitionTable is the single declarative source of transition legality.
// Guards are evaluated in a fixed order: ownership, then role, then reason
// length, so the most specific failure is reported first.
var transitionTable = map[transitionKey]transitionRule{
	{StatusNew, StatusAccepted}:                          {who: actorOwner},
	{StatusNew, StatusInProgress}:                        {who: actorOwner},
	{StatusAccepted, StatusInProgress}:                   {who: actorOwner},
	{StatusInProgress, StatusAccepted}:                   {who: actorOwner}, // undo start
	{StatusInProgress, StatusOnHold}:                     {who: actorOwner, needsReason: true},
	{StatusOnHold, StatusInProgress}:                     {who: actorOwner},
	{StatusInProgress, StatusCompletedPendingReview}:     {who: actorOwner, reviewGate: boolPtr(true)},
	{StatusInProgress, StatusClosedApproved}:             {who: actorOwner, reviewGate: boolPtr(false)},
	{StatusCompletedPendingReview, StatusInProgress}:     {who: actorOwner}, // withdraw from review
	{StatusCompletedPendingReview, StatusClosedApproved}: {who: actorManager, forbidSelf: true},
	{StatusCompletedPendingReview, StatusReopened}:       {who: actorManager, needsReason: true},
	{StatusReopened, StatusInProgress}:                   {who: actorOwner},
	{StatusClosedApproved, StatusReopened}:               {who: actorOwnerOrManager, needsReason: true},
}

// Validate reports whether the requested transition is legal for the given
// context. It is a pure predicate with no side effects.
func Validate(fromStatus, toStatus string, ctx TransitionContext) TransitionResult {
	return validate(fromStatus, toStatus, ctx, false)
}

func validate(fromStatus, toStatus string, ctx TransitionContext, skipReason bool) TransitionResult {
	rule, ok := transitionTable[transitionKey{fromStatus, toStatus}]
	if !ok {
		return invalid(CodeInvalidTransition, fmt.Sprintf("Invalid transition from %s to %s", fromStatus, toStatus))
	}

	if rule.reviewGate != nil && ctx.RequiresReview != *rule.reviewGate {
		return invalid(CodeInvalidTransition, fmt.Sprintf("Invalid transition from %s to %s", fromStatus, toStatus))
	}

	isOwner := ctx.CurrentUserID == ctx.TaskOwnerID

	switch rule.who {
	case actorOwner:
		if !isOwner {
			return invalid(CodeNotOwner, "only the task owner may perform this transition")
		}
	case actorManager:
		if rule.forbidSelf && isOwner {
			return invalid(CodeSelfApproval, "approving your own task is not allowed")
		}
		if !ctx.IsManager {
			return invalid(CodeNotManager, "only a manager of the task owner may perform this transition")
		}
	case actorOwnerOrManager:
		if !isOwner && !ctx.IsManager {
			return invalid(CodeNotManager, "only the task owner or their manager may perform this transition")
		}
	}

	if rule.needsReason && !skipReason {
		if len(strings.TrimSpace(ctx.Reason)) < MinReasonLength {
			return invalid(CodeReasonTooShort, fmt.Sprintf("a reason of at least %d characters is required", MinReasonLength))
		}
	}

	return TransitionResult{Valid: true}
}

// ValidTransitions enumerates every target status the context could legally
// move the task to from fromStatus. The reason-length guard is skipped during
// enumeration: a caller rendering available actions can still prompt for the
// justification before submitting.
func ValidTransitions(fromStatus string, ctx TransitionContext) []string {
	var out []string
	for key := range transitionTable {
		if key.from != fromStatus {
			continue
		}
		if result := validate(key.from, key.to, ctx, true); result.Valid {
			out = append(out, key.to)
		}
	}
	sort.Strings(out)
	return out
}

func invalid(code, message string) TransitionResult {
	return TransitionResult{Valid: false, Code: code, Message: message}
}
