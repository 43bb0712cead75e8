package planner

import (
	"reflect"
	"strings"
	"testing"
)

func TestTemplatePlanShape(t *testing.T) {
	plan := TemplatePlan("Backend Developer", "Go", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("template plan invalid: %v", err)
	}
	if len(plan.Steps) < 8 {
		t.Fatalf("got %d steps, want at least 8", len(plan.Steps))
	}
	if len(plan.Tasks) < 15 {
		t.Fatalf("got %d tasks, want at least 15", len(plan.Tasks))
	}

	// Every task points at a step that exists.
	ids := plan.StepIDs()
	for _, task := range plan.Tasks {
		if !ids[task.StepID] {
			t.Fatalf("task %q references unknown step %q", task.Title, task.StepID)
		}
	}

	// Orders are sequential from 1.
	for i, s := range plan.Steps {
		if s.Order != i+1 {
			t.Fatalf("step %s order: got %d, want %d", s.ID, s.Order, i+1)
		}
	}
}

func TestTemplatePlanEmptyRole(t *testing.T) {
	plan := TemplatePlan("", "", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("template plan invalid for empty role: %v", err)
	}
	if !strings.Contains(plan.Steps[0].Description, "Developer") {
		t.Fatalf("empty role not defaulted: %q", plan.Steps[0].Description)
	}
}

func TestTemplatePlanDeterministic(t *testing.T) {
	a := TemplatePlan("Dev", "Go", nil)
	b := TemplatePlan("Dev", "Go", nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("template plan not deterministic")
	}
}

func TestTemplatePlanUsesDocumentation(t *testing.T) {
	chunks := []string{"Run docker compose to install and setup the stack. Use pytest for tests."}
	withDocs := TemplatePlan("Dev", "Python", chunks)
	withoutDocs := TemplatePlan("Dev", "Python", nil)

	if reflect.DeepEqual(withDocs, withoutDocs) {
		t.Fatal("documentation chunks had no effect on template tasks")
	}
	var found bool
	for _, task := range withDocs.Tasks {
		if strings.Contains(task.Description, "uploaded") {
			found = true
		}
	}
	if !found {
		t.Fatal("no task points at the uploaded documentation")
	}
}
