package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/service"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

func TestValidateCreate(t *testing.T) {
	var rules service.WorkflowRules
	requester := &domain.UserSummary{ID: "u1", DisplayName: "Ana", Role: domain.RoleStudent, Active: true}

	tests := []struct {
		name         string
		requester    *domain.UserSummary
		pendingCount int
		wantRule     string
	}{
		{"nil requester", nil, 0, "requester_required"},
		{"inactive requester", &domain.UserSummary{ID: "u1", Active: false}, 0, "requester_active"},
		{"at cap", requester, 5, "pending_cap"},
		{"above cap", requester, 7, "pending_cap"},
		{"below cap", requester, 4, ""},
		{"no tickets", requester, 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := rules.ValidateCreate(tc.requester, tc.pendingCount)
			if tc.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsBusinessRuleViolation(err))
			assert.Equal(t, tc.wantRule, apperrors.ToDomainError(err).Details["rule"])
		})
	}
}

func TestValidateAssignment(t *testing.T) {
	var rules service.WorkflowRules
	activeTeacher := &domain.UserSummary{ID: "t1", DisplayName: "Marta", Role: domain.RoleTeacher, Active: true}

	tests := []struct {
		name            string
		assignee        *domain.UserSummary
		inProgressCount int
		wantRule        string
	}{
		{"nil assignee", nil, 0, "assignee_required"},
		{"inactive teacher", &domain.UserSummary{ID: "t1", Role: domain.RoleTeacher, Active: false}, 0, "assignee_active"},
		{"student cannot be responsible", &domain.UserSummary{ID: "s1", Role: domain.RoleStudent, Active: true}, 0, "assignee_role"},
		{"coordinator cannot be responsible", &domain.UserSummary{ID: "c1", Role: domain.RoleCoordinator, Active: true}, 0, "assignee_role"},
		{"at cap", activeTeacher, 10, "in_progress_cap"},
		{"below cap", activeTeacher, 9, ""},
		{"idle teacher", activeTeacher, 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := rules.ValidateAssignment(tc.assignee, tc.inProgressCount)
			if tc.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsBusinessRuleViolation(err))
			assert.Equal(t, tc.wantRule, apperrors.ToDomainError(err).Details["rule"])
		})
	}
}
