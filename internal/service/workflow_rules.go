package service

import (
	"fmt"

	"github.com/campus-desk/pqrs-service/internal/domain"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

const (
	// MaxPendingPerRequester caps REGISTERED/CLASSIFIED/IN_PROGRESS tickets
	// a single requester may hold. Creation-time only; the lifecycle never
	// re-validates it.
	MaxPendingPerRequester = 5
	// MaxInProgressPerAssignee caps IN_PROGRESS tickets per responsible teacher.
	MaxInProgressPerAssignee = 10
)

// WorkflowRules holds the stateless cross-ticket validators. Each check is a
// pure function of the candidate user and the count of matching tickets at the
// moment of the request; counting lives in the store contract so Postgres can
// answer with a direct query instead of loading the full collection.
type WorkflowRules struct{}

// ValidateCreate gates ticket creation on the requester's state and pending cap.
func (WorkflowRules) ValidateCreate(requester *domain.UserSummary, pendingCount int) error {
	if requester == nil {
		return apperrors.NewBusinessRuleViolation("requester_required", "requester is required")
	}
	if !requester.Active {
		return apperrors.NewBusinessRuleViolation("requester_active", "requester must be active")
	}
	if pendingCount >= MaxPendingPerRequester {
		return apperrors.NewBusinessRuleViolation("pending_cap",
			fmt.Sprintf("a requester cannot hold more than %d pending tickets", MaxPendingPerRequester))
	}
	return nil
}

// ValidateAssignment gates assignment on the candidate's eligibility and
// in-progress load.
func (WorkflowRules) ValidateAssignment(assignee *domain.UserSummary, inProgressCount int) error {
	if assignee == nil {
		return apperrors.NewBusinessRuleViolation("assignee_required", "assignee is required")
	}
	if !assignee.Active {
		return apperrors.NewBusinessRuleViolation("assignee_active", "assignee must be active")
	}
	if assignee.Role != domain.RoleTeacher {
		return apperrors.NewBusinessRuleViolation("assignee_role",
			"only a teacher can be assigned as responsible")
	}
	if inProgressCount >= MaxInProgressPerAssignee {
		return apperrors.NewBusinessRuleViolation("in_progress_cap",
			fmt.Sprintf("a teacher cannot hold more than %d tickets in progress", MaxInProgressPerAssignee))
	}
	return nil
}
