// Package draft manages generated-but-unapproved onboarding plans. A staged
// draft lives in a single per-project slot until an admin approves it (which
// persists it transactionally) or rejects it (which discards it).
package draft

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"rampup/model"
	"rampup/store"
)

// ErrNoDraft is returned when no draft is staged for the project.
var ErrNoDraft = errors.New("no draft staged for project")

// Draft is a staged plan awaiting review.
type Draft struct {
	ID        string         `json:"id"`
	ProjectID int64          `json:"project_id"`
	RoleID    int64          `json:"role_id"`
	Plan      *model.Plan    `json:"plan"`
	Metadata  model.Metadata `json:"metadata"`
	DocIDs    []int64        `json:"document_ids,omitempty"`
	StagedBy  string         `json:"staged_by"`
	StagedAt  time.Time      `json:"staged_at"`
}

// Manager holds staged drafts and commits or discards them.
//
// The slot is one draft per project: staging overwrites any previous draft
// for that project. Two admins staging drafts for the same project race
// last-write-wins; the mutex only protects the map itself. This is a known,
// accepted limitation given the human review cadence.
type Manager struct {
	store store.Store

	mu     sync.Mutex
	drafts map[int64]*Draft
}

// NewManager creates a Manager committing approved drafts to st.
func NewManager(st store.Store) *Manager {
	return &Manager{
		store:  st,
		drafts: make(map[int64]*Draft),
	}
}

// Stage places a plan in the project's slot, replacing any previous draft.
// Staging is idempotent under retry: re-staging the same input yields an
// equivalent staged state. Returns the staged draft.
func (m *Manager) Stage(projectID, roleID int64, plan *model.Plan, meta model.Metadata, docIDs []int64, stagedBy string) *Draft {
	d := &Draft{
		ID:        uuid.New().String()[:8],
		ProjectID: projectID,
		RoleID:    roleID,
		Plan:      plan,
		Metadata:  meta,
		DocIDs:    docIDs,
		StagedBy:  stagedBy,
		StagedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.drafts[projectID] = d
	m.mu.Unlock()
	return d
}

// Get returns the staged draft for the project.
func (m *Manager) Get(projectID int64) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, found := m.drafts[projectID]
	if !found {
		return nil, ErrNoDraft
	}
	return d, nil
}

// Approve commits the staged draft to the persistent store as one atomic
// transaction and clears the slot. Tasks with unresolved step references are
// dropped by the store and reported in the result. On failure the writes are
// rolled back and the draft stays staged so the admin can retry.
func (m *Manager) Approve(projectID int64, approvedBy string) (*store.ApproveResult, error) {
	d, err := m.Get(projectID)
	if err != nil {
		return nil, err
	}

	result, err := m.store.ApprovePlan(d.RoleID, d.Plan, d.Metadata, approvedBy, d.DocIDs)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	delete(m.drafts, projectID)
	m.mu.Unlock()
	return result, nil
}

// Reject discards the staged draft without persisting anything. Rejecting a
// project with no draft is a no-op; it reports whether a draft was cleared.
func (m *Manager) Reject(projectID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, found := m.drafts[projectID]
	delete(m.drafts, projectID)
	return found
}
