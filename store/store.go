// Package store defines the persistence interfaces for rampup.
package store

import (
	"errors"

	"rampup/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ApproveResult summarizes what a plan approval committed.
type ApproveResult struct {
	StepsCreated int      `json:"steps_created"`
	TasksCreated int      `json:"tasks_created"`
	SkippedTasks []string `json:"skipped_tasks,omitempty"` // titles of tasks with unresolved step refs
}

// Store is the persistent backing for projects, contacts and approved
// onboarding plans.
type Store interface {
	// Projects and roles.
	CreateProject(p *model.Project) error
	GetProject(id int64) (*model.Project, error)
	ListProjects() ([]*model.Project, error)
	CreateRole(r *model.Role) error
	GetRole(id int64) (*model.Role, error)
	ListRoles(projectID int64) ([]*model.Role, error)

	// Memberships.
	AddMembership(m *model.Membership) error
	GetMembership(id int64) (*model.Membership, error)
	ListMemberships(projectID int64) ([]*model.Membership, error)
	IsProjectAdmin(projectID int64, userID string) (bool, error)

	// Project tasks.
	CreateProjectTask(t *model.ProjectTask) error
	GetProjectTask(id int64) (*model.ProjectTask, error)
	ListProjectTasks(projectID int64) ([]*model.ProjectTask, error)
	ListAssignedTasks(userID string) ([]*model.ProjectTask, error)
	UpdateProjectTask(t *model.ProjectTask) error
	DeleteProjectTask(id int64) error

	// Contacts.
	CreateContact(c *model.Contact) error
	GetContact(id int64) (*model.Contact, error)
	ListContacts() ([]*model.Contact, error)
	UpdateContact(c *model.Contact) error
	DeleteContact(id int64) error

	// Documentation sources.
	CreateDocument(d *model.Document) error
	GetDocument(id int64) (*model.Document, error)
	ListDocuments(projectID int64) ([]*model.Document, error)
	UpdateDocumentStatus(id int64, status string, progress int, errMsg string) error

	// ApprovePlan expands an approved draft into persistent step, task
	// template and audit version records as one atomic transaction. Tasks
	// whose step_id does not resolve to a step in the plan are skipped and
	// reported in the result. A failure rolls back every write.
	ApprovePlan(roleID int64, plan *model.Plan, meta model.Metadata, createdBy string, sourceDocIDs []int64) (*ApproveResult, error)

	// Approved-plan reads.
	ListSteps(roleID int64) ([]*model.StepRecord, error)
	ListTaskTemplates(stepID int64) ([]*model.TaskTemplateRecord, error)
	ListVersions(stepID int64) ([]*model.VersionRecord, error)

	// Per-member onboarding progress. Task instances are created lazily
	// from the approved templates of the membership's role.
	ListOnboardingTasks(membershipID int64) ([]*model.OnboardingTask, error)

	// SetOnboardingTaskStatus creates or updates the member's instance of
	// the given template. The template must belong to the membership's
	// role; otherwise ErrNotFound is returned.
	SetOnboardingTaskStatus(membershipID, templateID int64, status string) (*model.OnboardingTask, error)

	Close() error
}
