// Package model defines the core domain types shared across all rampup packages.
// It has zero dependencies on other rampup packages.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Plan is a generated onboarding blueprint: an ordered sequence of steps and
// the tasks that belong to them. A plan is mutable until an admin approves it,
// at which point it is expanded into persistent records and frozen into an
// audit snapshot.
type Plan struct {
	Steps []Step `json:"steps"`
	Tasks []Task `json:"tasks"`
}

// Step is a named phase of onboarding. ID and Title are mandatory; Order and
// Description are filled with defaults by the normalizer when absent.
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Order       int    `json:"order,omitempty"`
	Description string `json:"description,omitempty"`
}

// Task is an actionable item belonging to a step. StepID, Title and
// Description are mandatory. IsRequired and EstimatedTimeHours are pointers so
// the normalizer can tell "absent" apart from an explicit false/zero.
// DependsOn holds free-form task references; it is not validated for
// existence or cycles.
type Task struct {
	StepID             string   `json:"step_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	IsRequired         *Bool    `json:"is_required,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	EstimatedTimeHours *float64 `json:"estimated_time_hours,omitempty"`
	DependsOn          []string `json:"depends_on,omitempty"`
}

// Bool unmarshals from a JSON boolean or the quoted strings "true"/"false",
// which generative models frequently emit in place of literals.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(data)))
	switch s {
	case "true", `"true"`:
		*b = true
	case "false", `"false"`:
		*b = false
	default:
		return fmt.Errorf("cannot unmarshal %s into bool", string(data))
	}
	return nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// BoolPtr returns a *Bool holding v. Handy for building plans in code.
func BoolPtr(v bool) *Bool {
	b := Bool(v)
	return &b
}

// Float64Ptr returns a *float64 holding v.
func Float64Ptr(v float64) *float64 { return &v }

// Validate checks the structural invariants every plan must satisfy before it
// may leave the repair pipeline: every step has an id and title, every task
// has a step_id, title and description. Unknown step references are tolerated
// here; they are dropped at approval time.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("nil plan")
	}
	for i, s := range p.Steps {
		if s.ID == "" || s.Title == "" {
			return fmt.Errorf("step %d: missing id or title", i)
		}
	}
	for i, t := range p.Tasks {
		if t.StepID == "" || t.Title == "" || t.Description == "" {
			return fmt.Errorf("task %d: missing step_id, title or description", i)
		}
	}
	return nil
}

// Empty reports whether the plan carries neither steps nor tasks.
func (p *Plan) Empty() bool {
	return p == nil || (len(p.Steps) == 0 && len(p.Tasks) == 0)
}

// StepIDs returns the set of step identifiers present in the plan.
func (p *Plan) StepIDs() map[string]bool {
	ids := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		ids[s.ID] = true
	}
	return ids
}

// Generation method tags recorded in plan metadata.
const (
	MethodTogetherAI       = "together_ai"
	MethodTemplateFallback = "template_fallback"
	ModelTemplateBased     = "template_based"
)

// Metadata records how a plan was produced: which backend and model, a
// fingerprint of the exact prompt pair, the request parameters and a
// timestamp. It travels with the plan through review and is frozen into the
// audit version record on approval.
type Metadata struct {
	Model          string    `json:"llm_model"`
	Method         string    `json:"generation_method"`
	PromptHash     string    `json:"prompt_hash"`
	Role           string    `json:"role_name"`
	Stack          string    `json:"project_stack"`
	GeneratedAt    time.Time `json:"generation_time"`
	RawOutputLen   int       `json:"raw_output_length,omitempty"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
}

// --- CRM records ---

// Project is a managed project that roles, memberships and documents hang off.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role is a named position within a project (e.g. "Backend Developer").
// Role names are unique per project.
type Role struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Membership ties a user to a project, optionally with a role. Admins may
// generate and approve onboarding plans.
type Membership struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    string    `json:"user_id"`
	RoleID    *int64    `json:"role_id,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	AddedAt   time.Time `json:"added_at"`
}

// Contact is a CRM contact record.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Statuses shared by project tasks and per-member onboarding tasks.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ProjectTask is a scheduled work item within a project, assigned to a user.
// Date is a calendar day in YYYY-MM-DD form; DurationHours defaults to 1.
type ProjectTask struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Status        string    `json:"status"`
	Date          string    `json:"date,omitempty"`
	DurationHours int       `json:"duration_hours"`
	CreatedAt     time.Time `json:"created_at"`
}

// OnboardingTask is one member's working copy of an approved task template.
// Instances are created lazily the first time the member touches a template;
// at most one exists per (membership, template) pair. CompletedAt is set
// while Status is completed and cleared when the task moves back.
type OnboardingTask struct {
	ID           int64      `json:"id"`
	MembershipID int64      `json:"membership_id"`
	TemplateID   int64      `json:"template_id"`
	Status       string     `json:"status"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Document statuses for AI processing progress tracking.
const (
	DocStatusUploaded   = "uploaded"
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusCompleted  = "completed"
	DocStatusFailed     = "failed"
)

// Document is an uploaded or imported documentation source used to ground
// generated onboarding plans. DocType is one of "pdf", "md", "html", "txt";
// pdf content is expected to be pre-extracted text.
type Document struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Title      string    `json:"title"`
	DocType    string    `json:"doc_type"`
	Content    string    `json:"content,omitempty"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Error      string    `json:"error,omitempty"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- Persistent onboarding records (created on approval) ---

// StepRecord is a persisted onboarding step under a role.
type StepRecord struct {
	ID          int64  `json:"id"`
	RoleID      int64  `json:"role_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// TaskTemplateRecord is a persisted task template under a step.
// AcceptanceCriteria is stored as newline-joined bullets.
type TaskTemplateRecord struct {
	ID                 int64    `json:"id"`
	StepID             int64    `json:"step_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	IsRequired         bool     `json:"is_required"`
	AcceptanceCriteria string   `json:"acceptance_criteria,omitempty"`
	EstimatedTimeHours float64  `json:"estimated_time_hours"`
	SourceContextIDs   []int64  `json:"source_context_ids,omitempty"`
	DependsOn          []string `json:"depends_on,omitempty"`
}

// VersionRecord is an immutable audit snapshot created per step on approval.
// DraftSnapshot holds the full approved plan as JSON.
type VersionRecord struct {
	ID            int64     `json:"id"`
	StepID        int64     `json:"step_id"`
	Version       int       `json:"version"`
	ModelName     string    `json:"model_name"`
	PromptHash    string    `json:"prompt_hash"`
	CreatedBy     string    `json:"created_by"`
	Changelog     string    `json:"changelog"`
	DraftSnapshot string    `json:"draft_snapshot"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Truncate shortens a string to maxLen runes, adding "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		r := []rune(s)
		if len(r) <= maxLen {
			return s
		}
		return string(r[:maxLen])
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// Clip shortens a string to maxLen runes with no ellipsis. The normalizer
// uses it for the silent title/description caps.
func Clip(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
