// Package authz implements the canonical role-based authorization check.
// Every lifecycle component consults the same predicate before mutating
// state; no component re-implements its own role comparison.
package authz

import (
	"context"
	"fmt"

	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

// Capability is a specific permitted action a role may grant.
type Capability string

const (
	CapProjectView       Capability = "project.view"
	CapProjectEdit       Capability = "project.edit"
	CapRoleBind          Capability = "role.bind"
	CapTaskCreate        Capability = "task.create"
	CapTaskEdit          Capability = "task.edit"
	CapTaskStatus        Capability = "task.status"
	CapFlowCreate        Capability = "flow.create"
	CapIncidentReport    Capability = "incident.report"
	CapIncidentTriage    Capability = "incident.triage"
	CapChecklistManage   Capability = "checklist.manage"
	CapChecklistComplete Capability = "checklist.complete"
	CapProgressRecord    Capability = "progress.record"
	CapProgressReview    Capability = "progress.review"
	CapDocumentUpload    Capability = "document.upload"
	CapDashboardView     Capability = "dashboard.view"
)

// roleCapabilities is the explicit role → capability table. Admin is
// handled separately: it grants everything.
var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleEditor: {
		CapProjectView:       true,
		CapTaskCreate:        true,
		CapTaskEdit:          true,
		CapTaskStatus:        true,
		CapChecklistManage:   true,
		CapChecklistComplete: true,
		CapProgressRecord:    true,
		CapProgressReview:    true,
		CapDocumentUpload:    true,
		CapIncidentReport:    true,
		CapDashboardView:     true,
	},
	models.RoleMember: {
		CapProjectView:       true,
		CapIncidentReport:    true,
		CapChecklistComplete: true,
		CapProgressRecord:    true,
	},
	models.RoleReader: {
		CapProjectView:   true,
		CapDashboardView: true,
	},
	models.RoleGuest: {
		CapProjectView: true,
	},
	models.RoleCourier: {
		CapProjectView:    true,
		CapDocumentUpload: true,
	},
}

// RoleGrants reports whether the role grants the capability.
func RoleGrants(role models.Role, cap Capability) bool {
	if role == models.RoleAdmin {
		return true
	}
	return roleCapabilities[role][cap]
}

// Authorizer answers authorization questions against project role bindings.
type Authorizer struct {
	projects storage.ProjectRepository
}

// New creates an Authorizer backed by the given project repository.
func New(projects storage.ProjectRepository) *Authorizer {
	return &Authorizer{projects: projects}
}

// Authorize reports whether the user may exercise the capability on the
// project. A user is authorized if they created the project, if their
// project-scoped role grants the capability, or if one of their global
// roles grants it (global admin bypasses project scoping entirely).
// Project-scoped roles never leak across projects.
func (a *Authorizer) Authorize(ctx context.Context, user *models.User, project *models.Project, cap Capability) (bool, error) {
	if user == nil || project == nil {
		return false, nil
	}

	if project.CreatorID == user.ID {
		return true, nil
	}

	for _, role := range user.Roles {
		if RoleGrants(role, cap) {
			return true, nil
		}
	}

	role, ok, err := a.projects.RoleOf(ctx, project.ID, user.ID)
	if err != nil {
		return false, fmt.Errorf("project role lookup: %w", err)
	}
	if ok && RoleGrants(role, cap) {
		return true, nil
	}

	return false, nil
}

// Require is Authorize returning models.ErrForbidden on denial.
func (a *Authorizer) Require(ctx context.Context, user *models.User, project *models.Project, cap Capability) error {
	ok, err := a.Authorize(ctx, user, project, cap)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s lacks %s on project %s: %w",
			user.ID, cap, project.ID, models.ErrForbidden)
	}
	return nil
}
