package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"rampup/model"
	"rampup/repair"
)

// fakeClient returns a canned completion or error.
type fakeClient struct {
	output string
	err    error
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	return f.output, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }

func TestGenerateNoBackend(t *testing.T) {
	g := New(nil, nil)
	plan, meta := g.Generate(context.Background(), "Backend Developer", "Go", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	if meta.Method != model.MethodTemplateFallback {
		t.Fatalf("method: got %q, want %q", meta.Method, model.MethodTemplateFallback)
	}
	if meta.Model != model.ModelTemplateBased {
		t.Fatalf("model: got %q, want %q", meta.Model, model.ModelTemplateBased)
	}
	if meta.PromptHash == "" {
		t.Fatal("prompt hash missing")
	}
}

func TestGenerateBackendError(t *testing.T) {
	g := New(&fakeClient{err: errors.New("connection refused")}, nil)
	plan, meta := g.Generate(context.Background(), "Dev", "Go", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	if meta.Method != model.MethodTemplateFallback {
		t.Fatalf("method: got %q, want %q", meta.Method, model.MethodTemplateFallback)
	}
	if meta.FallbackReason == "" {
		t.Fatal("fallback reason missing")
	}
}

func TestGenerateBackendSuccess(t *testing.T) {
	output := `{"steps": [{"id": "S1", "title": "Setup", "order": 1}], "tasks": [{"step_id": "S1", "title": "Install", "description": "Install tools"}]}`
	g := New(&fakeClient{output: output}, nil)
	plan, meta := g.Generate(context.Background(), "Dev", "Go", nil)
	if meta.Method != model.MethodTogetherAI {
		t.Fatalf("method: got %q, want %q", meta.Method, model.MethodTogetherAI)
	}
	if meta.Model != "fake-model" {
		t.Fatalf("model: got %q", meta.Model)
	}
	if meta.RawOutputLen != len(output) {
		t.Fatalf("raw output length: got %d, want %d", meta.RawOutputLen, len(output))
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Title != "Setup" {
		t.Fatalf("plan content: %+v", plan)
	}
	// Normalization applied to repaired output.
	task := plan.Tasks[0]
	if task.IsRequired == nil || !bool(*task.IsRequired) {
		t.Fatalf("is_required not defaulted: %+v", task)
	}
	if task.EstimatedTimeHours == nil || *task.EstimatedTimeHours != 2.0 {
		t.Fatalf("estimated hours not defaulted: %+v", task)
	}
}

func TestGenerateMalformedOutputRepaired(t *testing.T) {
	g := New(&fakeClient{output: "Sorry, here you go: complete nonsense with no JSON at all"}, nil)
	plan, meta := g.Generate(context.Background(), "Dev", "Go", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	if plan.Empty() {
		t.Fatal("plan empty")
	}
	// Still attributed to the AI backend; the repair cascade produced it.
	if meta.Method != model.MethodTogetherAI {
		t.Fatalf("method: got %q", meta.Method)
	}
}

func TestGenerateExhaustedCascadeUsesTemplate(t *testing.T) {
	// An empty strategy set always exhausts, forcing the template path.
	g := New(&fakeClient{output: "anything"}, nil)
	g.pipeline = repair.NewWithStrategies(nil)

	plan, meta := g.Generate(context.Background(), "Dev", "Go", nil)
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	if plan.Empty() {
		t.Fatal("plan empty")
	}
	if meta.Method != model.MethodTemplateFallback {
		t.Fatalf("method: got %q, want %q", meta.Method, model.MethodTemplateFallback)
	}
	if meta.Model != model.ModelTemplateBased {
		t.Fatalf("model: got %q, want %q", meta.Model, model.ModelTemplateBased)
	}
	if meta.FallbackReason == "" {
		t.Fatal("fallback reason missing")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	plan := &model.Plan{
		Steps: []model.Step{{ID: "S1", Title: "Setup"}},
		Tasks: []model.Task{{StepID: "S1", Title: "T", Description: "D"}},
	}
	Normalize(plan)

	s := plan.Steps[0]
	if s.Order != 1 {
		t.Fatalf("step order: got %d", s.Order)
	}
	task := plan.Tasks[0]
	if task.IsRequired == nil || !bool(*task.IsRequired) {
		t.Fatalf("is_required default: %+v", task.IsRequired)
	}
	if task.AcceptanceCriteria == nil || len(task.AcceptanceCriteria) != 0 {
		t.Fatalf("acceptance criteria default: %+v", task.AcceptanceCriteria)
	}
	if task.EstimatedTimeHours == nil || *task.EstimatedTimeHours != 2.0 {
		t.Fatalf("estimated hours default: %+v", task.EstimatedTimeHours)
	}
	if task.DependsOn == nil || len(task.DependsOn) != 0 {
		t.Fatalf("depends_on default: %+v", task.DependsOn)
	}
}

func TestNormalizePreservesExplicitValues(t *testing.T) {
	plan := &model.Plan{
		Tasks: []model.Task{{
			StepID:             "S1",
			Title:              "T",
			Description:        "D",
			IsRequired:         model.BoolPtr(false),
			EstimatedTimeHours: model.Float64Ptr(0.5),
		}},
	}
	Normalize(plan)
	task := plan.Tasks[0]
	if bool(*task.IsRequired) {
		t.Fatal("explicit false overwritten")
	}
	if *task.EstimatedTimeHours != 0.5 {
		t.Fatalf("explicit hours overwritten: %v", *task.EstimatedTimeHours)
	}
}

func TestNormalizeCapsLengths(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	plan := &model.Plan{
		Steps: []model.Step{{ID: "S1", Title: string(long), Description: string(long)}},
		Tasks: []model.Task{{StepID: "S1", Title: string(long), Description: string(long)}},
	}
	Normalize(plan)
	if len(plan.Steps[0].Title) != maxTitleLen {
		t.Fatalf("step title: got %d chars", len(plan.Steps[0].Title))
	}
	if len(plan.Tasks[0].Description) != maxDescriptionLen {
		t.Fatalf("task description: got %d chars", len(plan.Tasks[0].Description))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	plan := TemplatePlan("Dev", "Go", nil)
	Normalize(plan)
	onceSteps := append([]model.Step(nil), plan.Steps...)
	onceTasks := append([]model.Task(nil), plan.Tasks...)
	Normalize(plan)
	if !reflect.DeepEqual(plan.Steps, onceSteps) || !reflect.DeepEqual(plan.Tasks, onceTasks) {
		t.Fatal("normalize not idempotent")
	}
}
