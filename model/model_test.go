package model

import (
	"encoding/json"
	"testing"
)

func TestBoolUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"false"`, false, false},
		{`"True"`, true, false},
		{`1`, false, true},
		{`"yes"`, false, true},
	}
	for _, tc := range cases {
		var b Bool
		err := json.Unmarshal([]byte(tc.in), &b)
		if tc.wantErr {
			if err == nil {
				t.Errorf("unmarshal %s: expected error, got %v", tc.in, b)
			}
			continue
		}
		if err != nil {
			t.Errorf("unmarshal %s: %v", tc.in, err)
			continue
		}
		if bool(b) != tc.want {
			t.Errorf("unmarshal %s: got %v, want %v", tc.in, b, tc.want)
		}
	}
}

func TestBoolMarshal(t *testing.T) {
	out, err := json.Marshal(BoolPtr(true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "true" {
		t.Fatalf("marshal true: got %s", out)
	}
	out, _ = json.Marshal(BoolPtr(false))
	if string(out) != "false" {
		t.Fatalf("marshal false: got %s", out)
	}
}

func TestTaskQuotedBooleanField(t *testing.T) {
	var task Task
	raw := `{"step_id": "S1", "title": "T", "description": "D", "is_required": "false"}`
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.IsRequired == nil || bool(*task.IsRequired) {
		t.Fatalf("is_required: got %v, want explicit false", task.IsRequired)
	}
}

func TestPlanValidate(t *testing.T) {
	valid := &Plan{
		Steps: []Step{{ID: "S1", Title: "Setup"}},
		Tasks: []Task{{StepID: "S1", Title: "Install", Description: "Install deps"}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}

	cases := []struct {
		name string
		plan *Plan
	}{
		{"nil plan", nil},
		{"step missing id", &Plan{Steps: []Step{{Title: "Setup"}}}},
		{"step missing title", &Plan{Steps: []Step{{ID: "S1"}}}},
		{"task missing step_id", &Plan{Tasks: []Task{{Title: "T", Description: "D"}}}},
		{"task missing description", &Plan{Tasks: []Task{{StepID: "S1", Title: "T"}}}},
	}
	for _, tc := range cases {
		if err := tc.plan.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestPlanEmpty(t *testing.T) {
	if !(&Plan{}).Empty() {
		t.Fatal("plan with no steps and no tasks should be empty")
	}
	if (&Plan{Steps: []Step{{ID: "S1", Title: "T"}}}).Empty() {
		t.Fatal("plan with a step is not empty")
	}
	if (&Plan{Tasks: []Task{{StepID: "S1", Title: "T", Description: "D"}}}).Empty() {
		t.Fatal("plan with a task is not empty")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("short string changed: %q", got)
	}
	got := Truncate("hello world", 8)
	if len(got) != 8 || got[5:] != "..." {
		t.Fatalf("truncate: got %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := Clip("hello", 3); got != "hel" {
		t.Fatalf("clip: got %q", got)
	}
	if got := Clip("hi", 10); got != "hi" {
		t.Fatalf("clip short: got %q", got)
	}
}
