package draft

import (
	"errors"
	"testing"

	"rampup/model"
	"rampup/store"
)

// stubStore overrides ApprovePlan; the embedded nil interface panics on
// anything else, which the manager must never call.
type stubStore struct {
	store.Store
	approveErr   error
	approveCalls int
	lastRoleID   int64
}

func (s *stubStore) ApprovePlan(roleID int64, plan *model.Plan, meta model.Metadata, createdBy string, sourceDocIDs []int64) (*store.ApproveResult, error) {
	s.approveCalls++
	s.lastRoleID = roleID
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	return &store.ApproveResult{StepsCreated: len(plan.Steps), TasksCreated: len(plan.Tasks)}, nil
}

func testPlan() *model.Plan {
	return &model.Plan{
		Steps: []model.Step{{ID: "S1", Title: "Setup", Order: 1}},
		Tasks: []model.Task{{StepID: "S1", Title: "Install", Description: "Install tools"}},
	}
}

func TestStageAndGet(t *testing.T) {
	m := NewManager(&stubStore{})

	d := m.Stage(1, 10, testPlan(), model.Metadata{Method: model.MethodTemplateFallback}, nil, "alice")
	if d.ID == "" || d.StagedAt.IsZero() {
		t.Fatalf("draft not initialized: %+v", d)
	}

	got, err := m.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RoleID != 10 || got.StagedBy != "alice" {
		t.Fatalf("unexpected draft: %+v", got)
	}

	if _, err := m.Get(2); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("get missing: got %v, want ErrNoDraft", err)
	}
}

func TestStageReplacesPrevious(t *testing.T) {
	m := NewManager(&stubStore{})
	m.Stage(1, 10, testPlan(), model.Metadata{}, nil, "alice")
	m.Stage(1, 20, testPlan(), model.Metadata{}, nil, "bob")

	got, err := m.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RoleID != 20 || got.StagedBy != "bob" {
		t.Fatalf("earlier draft survived: %+v", got)
	}
}

func TestApproveCommitsAndClears(t *testing.T) {
	st := &stubStore{}
	m := NewManager(st)
	m.Stage(1, 10, testPlan(), model.Metadata{}, []int64{5}, "alice")

	result, err := m.Approve(1, "admin")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.StepsCreated != 1 || result.TasksCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if st.approveCalls != 1 || st.lastRoleID != 10 {
		t.Fatalf("store not called correctly: %+v", st)
	}

	// Slot is cleared; a second approval has nothing to commit.
	if _, err := m.Approve(1, "admin"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("second approve: got %v, want ErrNoDraft", err)
	}
}

func TestApproveFailurePreservesDraft(t *testing.T) {
	st := &stubStore{approveErr: errors.New("disk full")}
	m := NewManager(st)
	m.Stage(1, 10, testPlan(), model.Metadata{}, nil, "alice")

	if _, err := m.Approve(1, "admin"); err == nil {
		t.Fatal("approve should have failed")
	}

	// The draft is still staged for retry.
	d, err := m.Get(1)
	if err != nil {
		t.Fatalf("draft lost after failed approval: %v", err)
	}
	if d.RoleID != 10 {
		t.Fatalf("wrong draft retained: %+v", d)
	}

	// Retry succeeds once the store recovers.
	st.approveErr = nil
	if _, err := m.Approve(1, "admin"); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestReject(t *testing.T) {
	st := &stubStore{}
	m := NewManager(st)
	m.Stage(1, 10, testPlan(), model.Metadata{}, nil, "alice")

	if !m.Reject(1) {
		t.Fatal("reject reported no draft")
	}
	if _, err := m.Get(1); !errors.Is(err, ErrNoDraft) {
		t.Fatal("draft survived rejection")
	}
	if st.approveCalls != 0 {
		t.Fatal("rejection must not touch the store")
	}
	if m.Reject(1) {
		t.Fatal("second reject reported a draft")
	}
}
